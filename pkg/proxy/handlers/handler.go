package handlers

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"quotes-hq/bff/pkg/proxy"
	"quotes-hq/bff/pkg/upstream"
)

// Options wires a Handler. Upstream is required; everything else may be
// left zero.
type Options struct {
	Upstream Upstream
	Targets  upstream.Targets

	// Metadata is filled by proxy.Initialize and read by /start.
	Metadata *proxy.ReferenceMetadata

	// Audit receives a record for every forwarded create and delete.
	Audit AuditRecorder

	// AuditLog serves GET /audit; the route is not mounted when nil.
	AuditLog AuditLister

	Logger *slog.Logger
}

// Handler serves the BFF endpoints.
type Handler struct {
	upstream Upstream
	targets  upstream.Targets
	metadata *proxy.ReferenceMetadata
	audit    AuditRecorder
	auditLog AuditLister
	logger   *slog.Logger
}

// New creates a Handler.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		upstream: opts.Upstream,
		targets:  opts.Targets,
		metadata: opts.Metadata,
		audit:    opts.Audit,
		auditLog: opts.AuditLog,
		logger:   logger,
	}
}

// Routes mounts the endpoints on r.
//
//	GET    /quotes       list quotes
//	POST   /quotes       create a quote
//	DELETE /quotes/{id}  delete a quote, upstream status passed through
//	GET    /faulty       call the faulty service
//	GET    /start        startup status string
//	GET    /audit        recent audit records
func (h *Handler) Routes(r chi.Router) {
	r.Get("/quotes", h.GetQuotes)
	r.Post("/quotes", h.CreateQuote)
	r.Delete("/quotes/{id}", h.DeleteQuote)
	r.Get("/faulty", h.GetFaulty)
	r.Get("/start", h.Start)

	if h.auditLog != nil {
		r.Get("/audit", h.ListAudit)
	}
}
