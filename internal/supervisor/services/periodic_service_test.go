package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/watchlist/core"
	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type countingCache struct {
	calls atomic.Int32
	err   error
}

func (c *countingCache) PurgeExpired(context.Context) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestPeriodicServiceRunsImmediatelyAndOnTick(t *testing.T) {
	var runs atomic.Int32
	svc := NewPeriodicService("ticker", 10*time.Millisecond, func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, "ticker", svc.String())
}

func TestPeriodicServiceNoInterval(t *testing.T) {
	var runs atomic.Int32
	svc := NewPeriodicService("once", 0, func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Serve(ctx), context.DeadlineExceeded)
	assert.Equal(t, int32(1), runs.Load())
}

func TestCacheJanitor(t *testing.T) {
	for _, cacheErr := range []error{nil, errors.New("down")} {
		cache := &countingCache{err: cacheErr}
		svc := NewCacheJanitor(cache, time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_ = svc.Serve(ctx)
		cancel()
		assert.Equal(t, int32(1), cache.calls.Load())
	}
}

func TestHealthMonitor(t *testing.T) {
	for _, state := range []schema.HealthState{schema.Healthy, schema.Degraded, schema.Unhealthy} {
		svc := &core.MockListService{}
		svc.On("Health", mock.Anything).Return(schema.HealthReport{Status: state}).Once()

		monitor := NewHealthMonitor(svc, time.Hour)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_ = monitor.Serve(ctx)
		cancel()
		svc.AssertExpectations(t)
	}
}
