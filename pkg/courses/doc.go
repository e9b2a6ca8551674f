// Package courses orchestrates course operations: authorize, validate,
// mutate the store, invalidate the query cache, in that order. Cache
// invalidation runs only after a successful mutation and is best-effort.
package courses
