package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. HTTP keys follow OpenTelemetry semantic conventions; BFF
// specific keys live under "bff.".
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPURL        = "http.url"

	AttrRequestID       = "bff.request_id"
	AttrUpstreamTarget  = "bff.upstream.target"
	AttrUpstreamOutcome = "bff.upstream.outcome"
	AttrTokenSource     = "bff.token.source"
)

// SetRouteAttributes annotates an inbound server span.
func SetRouteAttributes(span trace.Span, method, route, requestID string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetUpstreamAttributes annotates an outbound client span. The URL is the
// upstream base plus path; query strings are never part of it.
func SetUpstreamAttributes(span trace.Span, target, method, url string) {
	span.SetAttributes(
		attribute.String(AttrUpstreamTarget, target),
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPURL, url),
	)
}

// SetResponseAttributes records the status code and outcome of a call.
func SetResponseAttributes(span trace.Span, statusCode int, outcome string) {
	attrs := []attribute.KeyValue{attribute.String(AttrUpstreamOutcome, outcome)}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(AttrHTTPStatusCode, statusCode))
	}
	span.SetAttributes(attrs...)
}

// SetStatusCode records the HTTP status code of an inbound response.
func SetStatusCode(span trace.Span, statusCode int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, statusCode))
}
