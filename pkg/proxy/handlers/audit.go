package handlers

import (
	"net/http"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/proxy"
)

// Limits of GET /audit?limit=N.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// ListAudit answers with the most recent audit records as a JSON array,
// newest first.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := DefaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := proxy.ParseIntParam("limit", raw)
		if err == nil && (n < 1 || n > MaxAuditLimit) {
			err = &proxy.RequestError{Message: "must be between 1 and 500", Param: "limit"}
		}
		if err != nil {
			h.rejectRequest(ctx, w, "GET /audit", err)
			return
		}
		limit = n
	}

	records, err := h.auditLog.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit records", "error", err)
		proxy.WriteStatus(w, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, records); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
