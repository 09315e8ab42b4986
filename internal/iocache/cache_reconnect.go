package iocache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/metrics"
	"github.com/huangsam/watchlist/schema"
)

// DefaultReconnectInterval is the minimum gap between connection attempts to an unreachable backend.
const DefaultReconnectInterval = 30 * time.Second

// ErrCacheUnavailable is returned while a ReconnectingCache has no live backend.
var ErrCacheUnavailable = errors.New("page cache unavailable")

// ConnectFunc opens a page cache backend.
type ConnectFunc func(ctx context.Context) (contract.PageCache, error)

// ReconnectingCache stands in for a backend that could not be opened at startup.
// Every operation first tries to open the backend, at most once per interval.
// Until that succeeds, operations fail with ErrCacheUnavailable and the list
// service treats them as misses and skipped writes.
type ReconnectingCache struct {
	backend  string
	connect  ConnectFunc
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	inner       contract.PageCache
	lastAttempt time.Time
	lastErr     error
	closed      bool
}

var (
	_ contract.PageCache     = &ReconnectingCache{} // Compile-time check
	_ contract.ExpiringCache = &ReconnectingCache{} // Compile-time check
)

// NewReconnectingCache returns a cache that opens backend with connect on first use.
func NewReconnectingCache(backend string, connect ConnectFunc, interval time.Duration) *ReconnectingCache {
	if interval <= 0 {
		interval = DefaultReconnectInterval
	}
	return &ReconnectingCache{
		backend:  backend,
		connect:  connect,
		interval: interval,
		now:      time.Now,
	}
}

// recordFailure registers a failed attempt made outside the cache, starting the retry interval.
func (c *ReconnectingCache) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastAttempt = c.now()
	c.lastErr = err
}

// Connected reports whether the backend has been opened.
func (c *ReconnectingCache) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner != nil
}

// current returns the live backend, attempting to open it when the interval has elapsed.
func (c *ReconnectingCache) current(ctx context.Context) (contract.PageCache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inner != nil {
		return c.inner, nil
	}
	if c.closed {
		return nil, ErrCacheUnavailable
	}
	if !c.lastAttempt.IsZero() && c.now().Sub(c.lastAttempt) < c.interval {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, c.lastErr)
	}

	c.lastAttempt = c.now()
	inner, err := c.connect(ctx)
	if err != nil {
		c.lastErr = err
		metrics.PageCacheErrors.WithLabelValues("connect").Inc()
		logging.Warn().Err(err).Str("backend", c.backend).Dur("retry_in", c.interval).Msg("Page cache still unavailable")
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	logging.Info().Str("backend", c.backend).Msg("Page cache connected")
	c.inner = inner
	c.lastErr = nil
	return inner, nil
}

// Get implements the PageCache interface.
func (c *ReconnectingCache) Get(ctx context.Context, key string) ([]byte, error) {
	inner, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return inner.Get(ctx, key)
}

// Put implements the PageCache interface.
func (c *ReconnectingCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	inner, err := c.current(ctx)
	if err != nil {
		return err
	}
	return inner.Put(ctx, key, value, ttl)
}

// InvalidateUser implements the PageCache interface.
func (c *ReconnectingCache) InvalidateUser(ctx context.Context, userID string) (int, error) {
	inner, err := c.current(ctx)
	if err != nil {
		return 0, err
	}
	return inner.InvalidateUser(ctx, userID)
}

// Clear implements the PageCache interface.
func (c *ReconnectingCache) Clear(ctx context.Context) error {
	inner, err := c.current(ctx)
	if err != nil {
		return err
	}
	return inner.Clear(ctx)
}

// PurgeExpired delegates to the backend when it expires entries itself.
func (c *ReconnectingCache) PurgeExpired(ctx context.Context) (int, error) {
	inner, err := c.current(ctx)
	if err != nil {
		return 0, err
	}
	if expiring, ok := inner.(contract.ExpiringCache); ok {
		return expiring.PurgeExpired(ctx)
	}
	return 0, nil
}

// GetStatus reports the configured backend as disconnected until it has been opened.
func (c *ReconnectingCache) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	inner, err := c.current(ctx)
	if err != nil {
		return schema.CacheStatus{Backend: c.backend, Connected: false}, err
	}
	return inner.GetStatus(ctx)
}

// Close closes the backend if it was opened and stops further attempts.
func (c *ReconnectingCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.inner == nil {
		return nil
	}
	return c.inner.Close()
}
