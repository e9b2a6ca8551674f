// Package store defines the persistent entities of the course API and the
// SQL-backed data access layer. Visibility restrictions arrive as query
// filters so rows a principal cannot see are never read, not post-filtered.
package store
