package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/proxy"
	"quotes-hq/bff/pkg/telemetry/logging"
)

const quotesPath = "quotes"

// GetQuotes forwards GET /quotes to the quotes service and answers 200
// with its body.
func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, body, err := h.upstream.GetWithStatus(ctx, h.targets.Quotes, quotesPath)
	if err != nil {
		proxy.HandleUpstreamError(ctx, w, h.logger, h.targets.Quotes.Name, "GET /quotes", err)
		return
	}
	h.logUpstreamStatus(ctx, "GET /quotes", status)

	if err := proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeJSON, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// CreateQuote decodes a quote, forwards its author, quote and book to the
// quotes service and answers 200 with the upstream body. A body that does
// not decode is rejected with 400 before anything is forwarded.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in Quote
	if err := proxy.DecodeJSONBody(r, &in); err != nil {
		h.rejectRequest(ctx, w, "POST /quotes", err)
		return
	}

	h.logger.InfoContext(ctx, "creating quote",
		"author", in.Author,
		"book", in.Book,
	)

	out := Quote{Author: in.Author, Quote: in.Quote, Book: in.Book}
	payload, err := json.Marshal(out)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode quote", "error", err)
		proxy.WriteStatus(w, http.StatusInternalServerError)
		return
	}

	status, body, err := h.upstream.PostWithStatus(ctx, h.targets.Quotes, quotesPath, payload)
	if err != nil {
		proxy.HandleUpstreamError(ctx, w, h.logger, h.targets.Quotes.Name, "POST /quotes", err)
		return
	}
	h.logUpstreamStatus(ctx, "POST /quotes", status)

	h.record(ctx, &audit.Record{
		Action: audit.ActionCreate,
		Author: out.Author,
		Quote:  out.Quote,
		Book:   out.Book,
		Status: status,
	})

	if err := proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeJSON, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// DeleteQuote forwards DELETE /quotes/{id} and answers with the upstream
// status code, unchanged and without a body.
func (h *Handler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := proxy.ParseIntParam("id", chi.URLParam(r, "id"))
	if err != nil {
		h.rejectRequest(ctx, w, "DELETE /quotes/{id}", err)
		return
	}

	h.logger.InfoContext(ctx, "deleting quote", "quote_id", id)

	status, err := h.upstream.Delete(ctx, h.targets.Quotes, fmt.Sprintf("%s/%d", quotesPath, id))
	if err != nil {
		proxy.HandleUpstreamError(ctx, w, h.logger, h.targets.Quotes.Name, "DELETE /quotes/{id}", err)
		return
	}

	h.record(ctx, &audit.Record{
		Action:  audit.ActionDelete,
		QuoteID: id,
		Status:  status,
	})

	proxy.WriteStatus(w, status)
}

// record hands a forwarded change to the audit trail. Only changes the
// quotes service accepted are recorded; a full buffer is logged by the
// recorder and never fails the request.
func (h *Handler) record(ctx context.Context, record *audit.Record) {
	if h.audit == nil || record.Status < 200 || record.Status > 299 {
		return
	}

	record.RequestID = logging.GetRequestID(ctx)
	if err := h.audit.Record(ctx, record); err != nil {
		h.logger.DebugContext(ctx, "audit record not queued", "error", err)
	}
}

func (h *Handler) rejectRequest(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	h.logger.WarnContext(ctx, "rejected request",
		"operation", operation,
		"error", err,
	)

	var reqErr *proxy.RequestError
	if errors.As(err, &reqErr) {
		proxy.WriteRequestError(w, reqErr)
		return
	}
	proxy.WriteStatus(w, proxy.StatusForError(err))
}

// logUpstreamStatus warns about a non-2xx upstream answer that GET and
// POST still pass on as 200.
func (h *Handler) logUpstreamStatus(ctx context.Context, operation string, status int) {
	if status >= 200 && status <= 299 {
		return
	}
	h.logger.WarnContext(ctx, "upstream answered with non-success status",
		"operation", operation,
		"status", status,
	)
}
