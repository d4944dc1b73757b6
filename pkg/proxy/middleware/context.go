package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// StartTimeKey stores the request start time for latency calculation.
const StartTimeKey contextKey = "start_time"

// unmatchedRoute labels requests chi could not route, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

// routePattern returns the chi route pattern that served r, such as
// "/quotes/{id}". It is only complete after the router has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}
