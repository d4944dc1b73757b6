package metrics

import (
	"time"

	"quotes-hq/bff/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TokenMetrics tracks identity token minting.
type TokenMetrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
}

// NewTokenMetrics creates and registers token metrics with the provided registry.
func NewTokenMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TokenMetrics {
	tm := &TokenMetrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_fetches_total",
				Help:      "Total number of identity token fetches",
			},
			[]string{"source", "outcome"},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_fetch_duration_seconds",
				Help:      "Duration of identity token fetches in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"source"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "token_cache_lookups_total",
				Help:      "Token cache lookups by result (only when caching is enabled)",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(tm.fetchesTotal, tm.fetchDuration, tm.cacheLookups)

	return tm
}

// RecordFetch records one token fetch.
func (tm *TokenMetrics) RecordFetch(source, outcome string, duration time.Duration) {
	tm.fetchesTotal.WithLabelValues(source, outcome).Inc()
	tm.fetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (tm *TokenMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	tm.cacheLookups.WithLabelValues(result).Inc()
}
