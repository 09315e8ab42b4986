package iocache

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

type memoryEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCache is an in-process page cache. Entries do not survive a restart.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var (
	_ contract.PageCache     = &MemoryCache{} // Compile-time check
	_ contract.ExpiringCache = &MemoryCache{} // Compile-time check
)

// NewMemoryCache returns an empty in-process cache using the wall clock.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock returns an empty in-process cache using the given clock.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: now}
}

// Get returns a copy of the cached page or (nil, nil) when absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, nil
	}
	return bytes.Clone(entry.value), nil
}

// Put stores a copy of the page with an absolute expiry.
func (c *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: bytes.Clone(value), createdAt: now, expiresAt: now.Add(ttl)}
	return nil
}

// InvalidateUser deletes every key under the user's prefix.
func (c *MemoryCache) InvalidateUser(_ context.Context, userID string) (int, error) {
	prefix := UserKeyPrefix(userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	deleted := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// PurgeExpired removes every entry whose expiry has passed.
func (c *MemoryCache) PurgeExpired(_ context.Context) (int, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			purged++
		}
	}
	return purged, nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// GetStatus reports entry counts, entry times and the payload size.
func (c *MemoryCache) GetStatus(_ context.Context) (schema.CacheStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := schema.CacheStatus{Backend: string(schema.MemoryCache), Connected: true, TotalEntries: len(c.entries)}
	for _, entry := range c.entries {
		status.SizeBytes += int64(len(entry.value))
		if entry.createdAt.After(status.LastEntryTime) {
			status.LastEntryTime = entry.createdAt
		}
		if status.OldestEntryTime.IsZero() || entry.createdAt.Before(status.OldestEntryTime) {
			status.OldestEntryTime = entry.createdAt
		}
	}
	return status, nil
}

// Close is a no-op.
func (c *MemoryCache) Close() error {
	return nil
}

// NoneCache disables page caching. Every read is a miss.
type NoneCache struct{}

var _ contract.PageCache = NoneCache{} // Compile-time check

// Get always misses.
func (NoneCache) Get(context.Context, string) ([]byte, error) { return nil, nil }

// Put discards the value.
func (NoneCache) Put(context.Context, string, []byte, time.Duration) error { return nil }

// InvalidateUser has nothing to delete.
func (NoneCache) InvalidateUser(context.Context, string) (int, error) { return 0, nil }

// Clear has nothing to delete.
func (NoneCache) Clear(context.Context) error { return nil }

// GetStatus reports a disconnected cache with no entries.
func (NoneCache) GetStatus(context.Context) (schema.CacheStatus, error) {
	return schema.CacheStatus{Backend: string(schema.NoneCache)}, nil
}

// Close is a no-op.
func (NoneCache) Close() error { return nil }
