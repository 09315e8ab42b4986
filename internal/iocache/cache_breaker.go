package iocache

import (
	"context"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/metrics"
	"github.com/huangsam/watchlist/schema"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerCache wraps a remote PageCache with a circuit breaker on Get and Put.
// While the circuit is open those calls fail fast and the caller treats them as
// a miss or a skipped write. InvalidateUser and Clear always reach the backend.
type BreakerCache struct {
	inner contract.PageCache
	cb    *gobreaker.CircuitBreaker[[]byte]
}

var _ contract.PageCache = &BreakerCache{} // Compile-time check

// NewBreakerCache wraps inner. The circuit opens after failures consecutive errors
// and probes the backend again after timeout.
func NewBreakerCache(name string, inner contract.PageCache, failures uint32, timeout time.Duration) *BreakerCache {
	metrics.CacheBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Page cache circuit breaker state transition")
			metrics.CacheBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &BreakerCache{inner: inner, cb: cb}
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// State returns the current breaker state.
func (c *BreakerCache) State() gobreaker.State {
	return c.cb.State()
}

// Get reads through the breaker.
func (c *BreakerCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		return c.inner.Get(ctx, key)
	})
}

// Put writes through the breaker.
func (c *BreakerCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.cb.Execute(func() ([]byte, error) {
		return nil, c.inner.Put(ctx, key, value, ttl)
	})
	return err
}

// InvalidateUser bypasses the breaker.
func (c *BreakerCache) InvalidateUser(ctx context.Context, userID string) (int, error) {
	return c.inner.InvalidateUser(ctx, userID)
}

// Clear bypasses the breaker.
func (c *BreakerCache) Clear(ctx context.Context) error {
	return c.inner.Clear(ctx)
}

// GetStatus bypasses the breaker.
func (c *BreakerCache) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	return c.inner.GetStatus(ctx)
}

// Close closes the wrapped cache.
func (c *BreakerCache) Close() error {
	return c.inner.Close()
}

// PurgeExpired bypasses the breaker. Backends with native expiry report zero.
func (c *BreakerCache) PurgeExpired(ctx context.Context) (int, error) {
	if ec, ok := c.inner.(contract.ExpiringCache); ok {
		return ec.PurgeExpired(ctx)
	}
	return 0, nil
}
