// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts facade fetches by how they were served:
	// upstream, cache, fallback-cache, fallback-mock, or error.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djenbridge_fetch_total",
			Help: "Total facade fetches by result source.",
		},
		[]string{"source"},
	)
	UpstreamRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djenbridge_upstream_request_total",
			Help: "Total DJEN HTTP attempts by outcome.",
		},
		[]string{"outcome"},
	)
	UpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "djenbridge_upstream_duration_seconds",
			Help:    "Duration of complete upstream queries, retries and pagination included.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	CacheLookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djenbridge_cache_lookup_total",
			Help: "Cache lookups by result (hit, miss, expired).",
		},
		[]string{"result"},
	)
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "djenbridge_cache_entries",
			Help: "Entries currently retained, stale ones included.",
		},
	)
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djenbridge_rate_limited_total",
			Help: "Requests rejected by admission control by ceiling.",
		},
		[]string{"limit"},
	)
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "djenbridge_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		},
	)
	RecordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djenbridge_records_dropped_total",
			Help: "Raw records dropped during normalization by reason.",
		},
		[]string{"reason"},
	)
	CoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "djenbridge_coalesced_total",
			Help: "Fetches that joined an in-flight upstream call.",
		},
	)
)
