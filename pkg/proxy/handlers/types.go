package handlers

import (
	"context"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/upstream"
)

// Quote is the body accepted by POST /quotes. Only Author, Quote and Book
// are forwarded; ID is assigned by the quotes service.
type Quote struct {
	ID     *int   `json:"id,omitempty"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Book   string `json:"book"`
}

// Upstream is the part of *upstream.Client the handlers use.
type Upstream interface {
	GetWithStatus(ctx context.Context, target upstream.Target, path string) (int, []byte, error)
	PostWithStatus(ctx context.Context, target upstream.Target, path string, payload []byte) (int, []byte, error)
	Delete(ctx context.Context, target upstream.Target, path string) (int, error)
}

// AuditRecorder accepts audit records without blocking.
type AuditRecorder interface {
	Record(ctx context.Context, record *audit.Record) error
}

// AuditLister reads recent audit records.
type AuditLister interface {
	List(ctx context.Context, limit int) ([]*audit.Record, error)
}
