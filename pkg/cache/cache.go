package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds the staleness of any cached entry
const DefaultTTL = 1 * time.Hour

// Cache is a key-derived cache of serialized query results.
//
// Get/Set pairs on one key are not atomic with respect to other handlers:
// two concurrent misses may both query the store and both write; last write
// wins, which is safe because both writes are equivalent snapshots.
type Cache interface {
	// Get returns the cached value and whether it was present and unexpired
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL (DefaultTTL if ttl <= 0)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate removes every entry whose key starts with prefix and
	// returns the number of entries dropped
	Invalidate(ctx context.Context, prefix string) (int, error)

	Close() error
}
