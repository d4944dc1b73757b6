package handlers

import (
	"net/http"

	"quotes-hq/bff/pkg/proxy"
)

// GetFaulty forwards GET /faulty to the root of the faulty service and
// answers 200 with its body.
func (h *Handler) GetFaulty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, body, err := h.upstream.GetWithStatus(ctx, h.targets.Faulty, "")
	if err != nil {
		proxy.HandleUpstreamError(ctx, w, h.logger, h.targets.Faulty.Name, "GET /faulty", err)
		return
	}
	h.logUpstreamStatus(ctx, "GET /faulty", status)

	if err := proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeText, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
