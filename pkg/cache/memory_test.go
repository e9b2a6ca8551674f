package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c, err := NewMemoryCache(16, 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheGetSet(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "key", []byte("value"), time.Minute)
	got, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok, "expired entries must not be served")
}

func TestMemoryCachePrefixInvalidation(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	c.Set(ctx, "courses_{}_asc_100", []byte("a"), time.Minute)
	c.Set(ctx, `courses_{"userId":7}_asc_100`, []byte("b"), time.Minute)
	c.Set(ctx, "users_all", []byte("c"), time.Minute)

	removed, err := c.Invalidate(ctx, "courses_")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.Get(ctx, "courses_{}_asc_100")
	assert.False(t, ok)
	_, ok = c.Get(ctx, `courses_{"userId":7}_asc_100`)
	assert.False(t, ok)

	// Other keyspaces untouched
	got, ok := c.Get(ctx, "users_all")
	require.True(t, ok)
	assert.Equal(t, []byte("c"), got)
}

func TestMemoryCacheSweepRemovesExpired(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	c.Set(ctx, "stale", []byte("x"), 5*time.Millisecond)
	c.Set(ctx, "fresh", []byte("y"), time.Minute)
	time.Sleep(10 * time.Millisecond)

	c.sweep()

	assert.NotContains(t, c.entries.Keys(), "stale")
	assert.Contains(t, c.entries.Keys(), "fresh")
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	c, err := NewMemoryCache(2, 0)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Set(ctx, "c", []byte("3"), time.Minute)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok, "oldest entry evicted at capacity")
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}
