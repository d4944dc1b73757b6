package middleware

import (
	"net/http"
	"time"

	"quotes-hq/bff/pkg/telemetry/metrics"
)

// MetricsMiddleware records request count and latency by chi route
// pattern, so /quotes/1 and /quotes/2 share one series.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if collector == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			collector.RecordRequest(routePattern(r), r.Method, rw.Status(), time.Since(start))
		})
	}
}
