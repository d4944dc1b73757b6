package metrics

import (
	"time"

	"quotes-hq/bff/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every Prometheus metric of the BFF.
//
// A nil *Collector is valid and records nothing, so components can be built
// without metrics in tests.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	tokenMetrics    *TokenMetrics
	auditMetrics    *AuditMetrics

	startupGate prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics on registry.
// If registry is nil a fresh one is created. Go runtime and process
// collectors are registered alongside.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "quotes",
//		Subsystem: "bff",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.tokenMetrics = NewTokenMetrics(cfg, registry)
	c.auditMetrics = NewAuditMetrics(cfg, registry)

	c.startupGate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      "startup_gate_up",
		Help:      "1 when the startup gate is up, 0 when it is down",
	})
	registry.MustRegister(
		c.startupGate,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed inbound request.
//
// Parameters:
//   - route: chi route pattern (e.g., "/quotes/{id}")
//   - method: HTTP method
//   - status: response status code
//   - duration: time spent serving the request
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// RecordUpstreamCall records one outbound call.
//
// Parameters:
//   - target: upstream name ("quotes", "reference", "faulty")
//   - method: HTTP method
//   - outcome: "ok", "timeout", "error", or the upstream status class
//   - duration: time until the response body was read or the call failed
func (c *Collector) RecordUpstreamCall(target, method, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.upstreamMetrics.RecordCall(target, method, outcome, duration)
}

// RecordTokenFetch records one token mint.
func (c *Collector) RecordTokenFetch(source, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.tokenMetrics.RecordFetch(source, outcome, duration)
}

// RecordTokenCache records a token cache lookup.
func (c *Collector) RecordTokenCache(hit bool) {
	if !c.enabled() {
		return
	}
	c.tokenMetrics.RecordCacheLookup(hit)
}

// RecordAuditWrite records the result of persisting an audit record.
func (c *Collector) RecordAuditWrite(outcome string) {
	if !c.enabled() {
		return
	}
	c.auditMetrics.RecordWrite(outcome)
}

// RecordAuditDropped records an audit record dropped because the buffer was full.
func (c *Collector) RecordAuditDropped() {
	if !c.enabled() {
		return
	}
	c.auditMetrics.RecordDropped()
}

// RecordAuditPruned records the number of records removed by retention.
func (c *Collector) RecordAuditPruned(n int64) {
	if !c.enabled() {
		return
	}
	c.auditMetrics.RecordPruned(n)
}

// SetStartupGate publishes the startup gate state.
func (c *Collector) SetStartupGate(up bool) {
	if !c.enabled() {
		return
	}
	if up {
		c.startupGate.Set(1)
	} else {
		c.startupGate.Set(0)
	}
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
