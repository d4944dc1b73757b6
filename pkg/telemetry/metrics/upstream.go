package metrics

import (
	"time"

	"quotes-hq/bff/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks outbound calls to the backing services.
//
// Metrics:
//   - quotes_bff_upstream_requests_total: calls by target, method, outcome
//   - quotes_bff_upstream_request_duration_seconds: call latency histogram
type UpstreamMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of outbound calls to upstream services",
			},
			[]string{"target", "method", "outcome"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_request_duration_seconds",
				Help:      "Duration of outbound calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"target", "method"},
		),
	}

	registry.MustRegister(um.callsTotal, um.callDuration)

	return um
}

// RecordCall records one outbound call.
func (um *UpstreamMetrics) RecordCall(target, method, outcome string, duration time.Duration) {
	um.callsTotal.WithLabelValues(target, method, outcome).Inc()
	um.callDuration.WithLabelValues(target, method).Observe(duration.Seconds())
}
