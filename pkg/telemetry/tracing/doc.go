// Package tracing provides OpenTelemetry tracing for the quotes BFF.
//
// Inbound requests get a server span named after their chi route, and each
// upstream call gets a client span whose context is injected into the
// outbound request with the W3C traceparent header. Spans are exported to an
// OTLP gRPC collector.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "upstream GET quotes")
//	defer span.End()
//	tracing.Inject(ctx, req.Header)
//
// When tracing is disabled the tracer is a noop and Inject writes nothing.
package tracing
