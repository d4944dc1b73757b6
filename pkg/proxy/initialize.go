package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quotes-hq/bff/pkg/telemetry/health"
	"quotes-hq/bff/pkg/upstream"
)

// MetadataPath is the reference service path fetched at startup.
const MetadataPath = "metadata"

// ErrGateLatched is returned by Initialize when a configuration error
// keeps the startup gate down.
var ErrGateLatched = errors.New("startup gate latched")

// Fetcher is the part of *upstream.Client used by Initialize.
type Fetcher interface {
	Get(ctx context.Context, target upstream.Target, path string) ([]byte, error)
}

// Initialize runs the one-time startup probe and sets the gate.
//
// A missing quotes or reference URL latches the gate DOWN for the life of
// the process. When the reference URL is set, its metadata is fetched once
// through the authenticated client: success stores the metadata and marks
// the gate UP (unless latched), failure marks it DOWN. Initialize never
// stops the process; any error it returns means the gate is down.
func Initialize(ctx context.Context, client Fetcher, targets upstream.Targets, gate *health.StartupGate, store *ReferenceMetadata, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "initializing BFF",
		"quotes_url", targets.Quotes.BaseURL,
		"reference_url", targets.Reference.BaseURL,
		"faulty_url", targets.Faulty.BaseURL,
	)

	if !targets.Reference.Configured() {
		logger.ErrorContext(ctx, "reference service URL has not been configured, set the reference_url environment variable")
		gate.Latch("reference_url not configured")
	}
	if !targets.Quotes.Configured() {
		logger.ErrorContext(ctx, "quotes service URL has not been configured, set the quotes_url environment variable")
		gate.Latch("quotes_url not configured")
	}

	if !targets.Reference.Configured() {
		return fmt.Errorf("reference metadata: %w", upstream.ErrNotConfigured)
	}

	if !store.Available() {
		data, err := client.Get(ctx, targets.Reference, MetadataPath)
		if err != nil {
			logger.ErrorContext(ctx, "unable to get reference service data",
				"url", targets.Reference.URL(MetadataPath),
				"failure", FailureKind(err),
				"error", err,
			)
			gate.Down("reference metadata unavailable")
			return fmt.Errorf("reference metadata: %w", err)
		}

		store.Set(data)
		logger.InfoContext(ctx, "reference metadata", "metadata", string(data))
	}

	if !gate.Up() {
		logger.WarnContext(ctx, "startup gate stays down after configuration error",
			"reason", gate.Reason(),
		)
		return fmt.Errorf("%w: %s", ErrGateLatched, gate.Reason())
	}

	logger.InfoContext(ctx, "startup gate is up")
	return nil
}
