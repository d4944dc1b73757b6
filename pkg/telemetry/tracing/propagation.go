package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Propagator returns the W3C trace context plus baggage propagator. It is
// used whether or not spans are exported, so trace context sent by a
// caller always reaches the upstream services.
func Propagator() propagation.TextMapPropagator {
	return propagator
}

// Extract reads traceparent and tracestate from inbound headers into ctx.
// If the headers carry no trace context, ctx is returned unchanged.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context in ctx into outbound headers so the
// upstream call joins the inbound trace.
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
