// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageCacheHits counts list pages served from the cache.
	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchlist_page_cache_hits_total",
			Help: "List pages served from the page cache",
		},
	)

	// PageCacheMisses counts reads that fell through to the list store.
	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchlist_page_cache_misses_total",
			Help: "List page reads that fell through to the list store",
		},
	)

	// PageCacheErrors counts failed cache operations by operation.
	PageCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_page_cache_errors_total",
			Help: "Failed page cache operations",
		},
		[]string{"operation"},
	)

	// PageCacheInvalidations counts per-user invalidations by outcome (success, failure).
	PageCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_page_cache_invalidations_total",
			Help: "Per-user page cache invalidations",
		},
		[]string{"outcome"},
	)

	// PageCacheKeysInvalidated counts cache keys deleted by invalidation.
	PageCacheKeysInvalidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchlist_page_cache_keys_invalidated_total",
			Help: "Cache keys deleted by per-user invalidation",
		},
	)

	// PageCacheExpiredPurged counts expired entries removed by the janitor.
	PageCacheExpiredPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchlist_page_cache_expired_purged_total",
			Help: "Expired page cache entries removed by the janitor",
		},
	)

	// CacheBreakerState is 0 closed, 1 half-open, 2 open.
	CacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchlist_cache_breaker_state",
			Help: "Page cache circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// ListOperations counts list service operations by operation and outcome code.
	ListOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchlist_list_operations_total",
			Help: "List service operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// ContentLookupFailures counts catalog lookups that resolved to null content.
	ContentLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchlist_content_lookup_failures_total",
			Help: "Catalog lookups on the read path that yielded null content",
		},
	)

	// TotalListItems mirrors the health report counter.
	TotalListItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchlist_list_items",
			Help: "Total list entries across all users at the last health check",
		},
	)

	// HealthStatus is 1 when the last health check was healthy or degraded.
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchlist_health_up",
			Help: "1 when the last health check passed",
		},
	)

	// APIRequestDuration observes HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchlist_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)

	// APIRateLimitHits counts requests rejected by the rate limiter.
	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchlist_api_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
