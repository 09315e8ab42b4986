package core

import (
	"context"

	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/metrics"
	"github.com/huangsam/watchlist/schema"
)

// Health checks the store and the page cache.
// A store failure is unhealthy; a cache failure only degrades the service.
func (s *Service) Health(ctx context.Context) schema.HealthReport {
	report := schema.HealthReport{
		Status:    schema.Healthy,
		Timestamp: s.now().UTC(),
		Database:  schema.Connected,
		Cache:     schema.Connected,
	}

	var total int64
	err := s.store.Ping(ctx)
	if err == nil {
		total, err = s.store.CountAll(ctx)
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Health check: list store unavailable")
		report.Database = schema.Disconnected
		report.Status = schema.Unhealthy
	} else {
		report.Metrics.TotalListItems = total
		metrics.TotalListItems.Set(float64(total))
	}

	if s.cacheDisabled() {
		report.Cache = schema.Disabled
	} else {
		status, err := s.cache.GetStatus(ctx)
		if err != nil || !status.Connected {
			logging.Ctx(ctx).Warn().Err(err).Str("backend", status.Backend).Msg("Health check: page cache unavailable")
			report.Cache = schema.Disconnected
			if report.Status == schema.Healthy {
				report.Status = schema.Degraded
			}
		}
	}

	metrics.HealthStatus.Set(healthGauge(report.Status))
	return report
}

// healthGauge maps health states to 1 (healthy), 0.5 (degraded) and 0 (unhealthy).
func healthGauge(state schema.HealthState) float64 {
	switch state {
	case schema.Healthy:
		return 1
	case schema.Degraded:
		return 0.5
	default:
		return 0
	}
}
