package services

import (
	"context"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/metrics"
	"github.com/huangsam/watchlist/schema"
)

// PeriodicService runs a task once at start and then on every tick.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context)
}

// NewPeriodicService wraps task. A non-positive interval runs it once and then idles.
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context)) *PeriodicService {
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	p.task(ctx)
	if p.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.task(ctx)
		}
	}
}

// String implements fmt.Stringer for logging.
func (p *PeriodicService) String() string {
	return p.name
}

// NewHealthMonitor logs the service health on every interval.
func NewHealthMonitor(svc contract.ListService, interval time.Duration) *PeriodicService {
	return NewPeriodicService("health-monitor", interval, func(ctx context.Context) {
		report := svc.Health(ctx)
		event := logging.Info()
		switch report.Status {
		case schema.Degraded:
			event = logging.Warn()
		case schema.Unhealthy:
			event = logging.Error()
		}
		event.
			Str("status", string(report.Status)).
			Str("database", report.Database).
			Str("cache", report.Cache).
			Int64("total_list_items", report.Metrics.TotalListItems).
			Msg("Periodic health check")
	})
}

// NewCacheJanitor purges expired pages from caches without native expiry.
func NewCacheJanitor(cache contract.ExpiringCache, interval time.Duration) *PeriodicService {
	return NewPeriodicService("cache-janitor", interval, func(ctx context.Context) {
		n, err := cache.PurgeExpired(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to purge expired cache pages")
			return
		}
		metrics.PageCacheExpiredPurged.Add(float64(n))
		if n > 0 {
			logging.Debug().Int("purged", n).Msg("Purged expired cache pages")
		}
	})
}
