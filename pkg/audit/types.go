package audit

import (
	"context"
	"time"
)

// Actions recorded in the audit trail.
const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// Record is one audited change forwarded to the quotes service.
type Record struct {
	// ID uniquely identifies the record (UUID).
	ID string `json:"id"`

	// Action is ActionCreate or ActionDelete.
	Action string `json:"action"`

	// QuoteID is the deleted quote's ID; zero for creates.
	QuoteID int `json:"quoteId,omitempty"`

	Author string `json:"author,omitempty"`
	Quote  string `json:"quote,omitempty"`
	Book   string `json:"book,omitempty"`

	// Status is the HTTP status the upstream answered with.
	Status int `json:"status"`

	// RequestID correlates the record with the inbound request logs.
	RequestID string `json:"requestId,omitempty"`

	Created time.Time `json:"created"`
}

// Storage persists audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// DeleteOlderThan removes records created before cutoff and returns how
	// many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases the backend.
	Close() error
}
