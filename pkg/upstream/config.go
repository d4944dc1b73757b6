package upstream

import (
	"errors"
	"time"

	"quotes-hq/bff/pkg/config"
)

// Upstream names, used as the "target" metric label and span attribute.
const (
	TargetQuotes    = "quotes"
	TargetReference = "reference"
	TargetFaulty    = "faulty"
)

// ClientConfig holds the socket timeouts of the shared client. It is read
// once by NewClient; changing a ClientConfig afterwards has no effect.
type ClientConfig struct {
	// ReadTimeout bounds every single socket read, including waiting for
	// the response headers and every chunk of the body.
	ReadTimeout time.Duration

	// WriteTimeout bounds every single socket write of the request.
	WriteTimeout time.Duration

	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration
}

// ClientConfigFrom converts the upstream section of the configuration.
func ClientConfigFrom(cfg *config.UpstreamsConfig) ClientConfig {
	return ClientConfig{
		ReadTimeout:    cfg.ReadTimeout(),
		WriteTimeout:   cfg.WriteTimeout(),
		ConnectTimeout: cfg.ConnectTimeout(),
	}
}

// Target is one upstream service.
type Target struct {
	Name    string
	BaseURL string
}

// Configured reports whether the target has a base URL.
func (t Target) Configured() bool {
	return t.BaseURL != ""
}

// URL returns base + "/" + path, the exact string used as token audience.
func (t Target) URL(path string) string {
	return t.BaseURL + "/" + path
}

// Targets holds the three upstreams of the BFF.
type Targets struct {
	Quotes    Target
	Reference Target
	Faulty    Target
}

// TargetsFrom builds the targets from configuration.
func TargetsFrom(cfg *config.UpstreamsConfig) Targets {
	return Targets{
		Quotes:    Target{Name: TargetQuotes, BaseURL: cfg.QuotesURL},
		Reference: Target{Name: TargetReference, BaseURL: cfg.ReferenceURL},
		Faulty:    Target{Name: TargetFaulty, BaseURL: cfg.FaultyURL},
	}
}

// ErrNotConfigured is returned for calls to a target without a base URL.
var ErrNotConfigured = errors.New("upstream URL is not configured")
