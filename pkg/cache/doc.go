// Package cache provides the query-result cache used by the read paths.
// Keys are derived deterministically from the effective query filter, sort
// order, and limit, so two logically identical queries always share a key.
// Writes invalidate by key prefix: over-invalidation is safe, under-
// invalidation is a correctness bug.
package cache
