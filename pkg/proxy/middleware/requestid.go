package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"quotes-hq/bff/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header for request ID.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps client-supplied IDs before they reach logs and
// upstream headers.
const maxRequestIDLength = 128

// RequestIDMiddleware assigns every request an ID. A client-supplied
// X-Request-ID is kept; otherwise a UUID is generated.
//
// The ID is stored in the context through logging.WithRequestID, so every
// record logged with the request context carries it, echoed in the
// X-Request-ID response header and forwarded on upstream calls.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
