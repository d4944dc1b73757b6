// Package telemetry groups the observability packages of the quotes BFF.
//
// # Components
//
//   - logging: slog with request IDs, trace IDs and bearer token redaction
//   - metrics: Prometheus collectors for inbound requests, upstream calls,
//     token fetches, the audit trail and the startup gate
//   - tracing: OpenTelemetry spans with OTLP export and W3C propagation
//   - health: liveness, readiness, startup and version probes plus the
//     startup gate
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json", RedactTokens: true})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	gate := health.NewStartupGate(collector.SetStartupGate)
//
// # Token Redaction
//
// With RedactTokens set, bearer tokens and JWTs are masked wherever they
// appear in a log attribute, and values under keys such as "authorization"
// or "token" are masked entirely.
package telemetry
