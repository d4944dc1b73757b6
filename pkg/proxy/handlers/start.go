package handlers

import (
	"net/http"
	"time"

	"quotes-hq/bff/pkg/proxy"
)

// Responses of GET /start.
const (
	StartedMessage         = "BFFController started"
	StartedDegradedMessage = "BFFController started however Reference Data service could not be accessed"
)

// Start reports whether the reference metadata was fetched at startup. It
// always answers 200.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "executed start endpoint request",
		"at", time.Now().Format("15:04:05.000"),
	)

	message := StartedDegradedMessage
	if h.metadata.Available() {
		message = StartedMessage
	}

	if err := proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeText, []byte(message)); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
