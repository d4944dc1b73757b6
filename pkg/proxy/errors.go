package proxy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"quotes-hq/bff/pkg/auth"
	"quotes-hq/bff/pkg/upstream"
)

// StatusForError maps a handler error to the status the client sees:
// 400 for a *RequestError and 500 for anything else, including every
// upstream I/O failure.
func StatusForError(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// HandleUpstreamError logs a failed upstream call and answers 500 with no
// body. The failure kind (timeout, canceled, token, error) is logged so
// operators can tell a slow upstream from a credential problem.
func HandleUpstreamError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, target, operation string, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"target", target,
		"operation", operation,
		"failure", FailureKind(err),
		"error", err,
	}

	var tokenErr *auth.TokenError
	if errors.As(err, &tokenErr) {
		attrs = append(attrs, "audience", tokenErr.Audience)
	}

	logger.ErrorContext(ctx, "upstream request failed", attrs...)
	WriteStatus(w, http.StatusInternalServerError)
}

// FailureKind names an upstream failure for logs.
func FailureKind(err error) string {
	if errors.Is(err, upstream.ErrNotConfigured) {
		return "not_configured"
	}
	return upstream.Classify(err)
}
