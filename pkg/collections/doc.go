// Package collections exposes read access to course collections. Visibility
// for non-admins is derived from course ownership: a collection is visible
// when it contains at least one of the caller's courses, and its nested
// course listing is restricted to those courses.
package collections
