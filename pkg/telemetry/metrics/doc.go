// Package metrics provides Prometheus metrics for the quotes BFF.
//
// # Metrics Categories
//
//   - Request Metrics: inbound request count and duration by chi route
//   - Upstream Metrics: outbound call count, outcome and latency per target
//   - Token Metrics: identity token fetch count, latency and cache lookups
//   - Audit Metrics: audit writes, drops and retention pruning
//   - Startup gate: 1 when the gate is up
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordUpstreamCall("quotes", "GET", "ok", 120*time.Millisecond)
//	router.Handle("/metrics", collector.Handler())
//
// A nil *Collector ignores every call.
package metrics
