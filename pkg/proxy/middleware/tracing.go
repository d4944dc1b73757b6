package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"quotes-hq/bff/pkg/telemetry/logging"
	"quotes-hq/bff/pkg/telemetry/tracing"
)

// TracingMiddleware starts a server span per request, continuing any W3C
// trace context sent by the caller. The span is renamed to the chi route
// once routing is done.
//
// A nil tracer returns a pass-through middleware.
func TracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tracer == nil || !tracer.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := routePattern(r.WithContext(ctx))
			span.SetName(r.Method + " " + route)
			tracing.SetRouteAttributes(span, r.Method, route, logging.GetRequestID(ctx))
			tracing.SetStatusCode(span, rw.Status())
		})
	}
}
