// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_lookups_total",
			Help: "Cache lookups by tier (volatile, persistent) and result (hit, miss, error)",
		},
		[]string{"tier", "result"},
	)

	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_fallback_total",
			Help: "Answers produced without a usable model reply, by reason",
		},
		[]string{"reason"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_upstream_duration_seconds",
			Help:    "Duration of upstream calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	TrackedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_rate_limit_clients",
			Help: "Number of clients currently tracked by the rate limiter",
		},
	)
)
