package reference

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"cloud.google.com/go/compute/metadata"
)

// Unknown fills metadata fields that cannot be resolved, such as when the
// service runs outside Google Cloud.
const Unknown = "unknown"

// Metadata describes where the reference service runs.
type Metadata struct {
	ProjectID  string `json:"projectID"`
	Zone       string `json:"zone"`
	InstanceID string `json:"instanceID"`
}

// Resolver returns the metadata served by /metadata.
type Resolver interface {
	Resolve(ctx context.Context) Metadata
}

// MetadataResolver reads project, zone and instance from the GCE metadata
// server. The first successful lookup of each field is kept for the life
// of the process.
type MetadataResolver struct {
	client *metadata.Client
	onGCE  func() bool
	logger *slog.Logger

	mu       sync.Mutex
	resolved *Metadata
}

// NewMetadataResolver creates a resolver. httpClient may be nil.
func NewMetadataResolver(httpClient *http.Client, logger *slog.Logger) *MetadataResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataResolver{
		client: metadata.NewClient(httpClient),
		onGCE:  metadata.OnGCE,
		logger: logger,
	}
}

// Resolve returns the metadata. Off GCE, or for a field the metadata
// server does not answer, the value is Unknown.
func (r *MetadataResolver) Resolve(ctx context.Context) Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return *r.resolved
	}

	md := Metadata{ProjectID: Unknown, Zone: Unknown, InstanceID: Unknown}
	if !r.onGCE() {
		r.logger.DebugContext(ctx, "not running on GCE, metadata unknown")
		return md
	}

	complete := true
	lookup := func(field string, fn func(context.Context) (string, error), dst *string) {
		value, err := fn(ctx)
		if err != nil || value == "" {
			r.logger.WarnContext(ctx, "metadata lookup failed", "field", field, "error", err)
			complete = false
			return
		}
		*dst = value
	}

	lookup("project_id", r.client.ProjectIDWithContext, &md.ProjectID)
	lookup("zone", r.client.ZoneWithContext, &md.Zone)
	lookup("instance_id", r.client.InstanceIDWithContext, &md.InstanceID)

	if complete {
		r.resolved = &md
	}
	return md
}

// StaticResolver always returns the same metadata.
type StaticResolver Metadata

// Resolve returns the static metadata.
func (s StaticResolver) Resolve(context.Context) Metadata {
	return Metadata(s)
}
