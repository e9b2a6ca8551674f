package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/robfig/cron/v3"
)

// DefaultMemorySize is the default entry capacity of the in-memory cache
const DefaultMemorySize = 1024

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU cache with per-entry TTL. Expired entries
// are rejected on read and removed by a periodic sweep, so the LRU size
// bound and the TTL contract are independent mechanisms.
type MemoryCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, memoryEntry]
	sweeper *cron.Cron
}

// NewMemoryCache creates an in-memory cache holding at most size entries,
// sweeping expired entries every sweepInterval (0 disables the sweep; reads
// still honor TTLs).
func NewMemoryCache(size int, sweepInterval time.Duration) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}

	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}

	c := &MemoryCache{entries: entries}

	if sweepInterval > 0 {
		c.sweeper = cron.New()
		c.sweeper.Schedule(cron.Every(sweepInterval), cron.FuncJob(c.sweep))
		c.sweeper.Start()
	}

	return c, nil
}

// Get returns the cached value for key if present and unexpired
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key with the given TTL
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, memoryEntry{value: value, expiresAt: time.Now().Add(ttl)})
}

// Invalidate removes all entries whose key starts with prefix
func (c *MemoryCache) Invalidate(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Close stops the background sweep
func (c *MemoryCache) Close() error {
	if c.sweeper != nil {
		c.sweeper.Stop()
	}
	return nil
}

// sweep drops expired entries so they do not occupy LRU capacity
func (c *MemoryCache) sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && now.After(entry.expiresAt) {
			c.entries.Remove(key)
		}
	}
}
