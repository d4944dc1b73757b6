package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"quotes-hq/bff/pkg/config"
	"quotes-hq/bff/pkg/telemetry/metrics"

	"golang.org/x/oauth2"
)

// Token sources, used as the "source" metric label.
const (
	SourceIDToken  = "idtoken"
	SourceMetadata = "metadata"
	SourceStatic   = "static"
)

// Provider mints a bearer token for an audience. The audience is the full
// outbound URL the token will be sent to, and the returned token is bound
// to exactly that audience.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	Token(ctx context.Context, audience string) (string, error)
}

// Fetcher exposes the full oauth2 token, including its expiry. Every
// provider in this package implements it; CachingProvider relies on it.
type Fetcher interface {
	FetchToken(ctx context.Context, audience string) (*oauth2.Token, error)
}

// TokenError is returned when a token could not be minted. It is the I/O
// failure of the outbound call that needed the token.
type TokenError struct {
	Audience string
	Cause    error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("failed to mint token for audience %s: %v", e.Audience, e.Cause)
}

func (e *TokenError) Unwrap() error {
	return e.Cause
}

// Options carries the collaborators shared by every provider.
type Options struct {
	// HTTPClient is used by the metadata provider. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Timeout bounds a single token fetch. Zero means no extra bound.
	Timeout time.Duration

	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// New builds the provider selected by cfg.Mode. When cfg.CacheTokens is set
// the provider is wrapped in a CachingProvider; otherwise every call mints a
// fresh token.
func New(cfg *config.AuthConfig, opts Options) (Provider, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if cfg.TokenTimeout > 0 {
		opts.Timeout = cfg.TokenTimeout
	}

	var fetcher interface {
		Provider
		Fetcher
	}

	switch cfg.Mode {
	case config.AuthModeIDToken, "":
		fetcher = NewIDTokenProvider(cfg.CredentialsFile, opts)
	case config.AuthModeMetadata:
		fetcher = NewMetadataProvider(opts)
	case config.AuthModeStatic:
		if cfg.StaticToken == "" {
			return nil, fmt.Errorf("auth mode %q requires a static token", cfg.Mode)
		}
		opts.Logger.Warn("using a static bearer token; tokens are not audience-bound")
		fetcher = NewStaticProvider(cfg.StaticToken, opts)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Mode)
	}

	if cfg.CacheTokens {
		opts.Logger.Info("token caching enabled", "mode", cfg.Mode)
		return NewCachingProvider(fetcher, opts.Metrics), nil
	}

	return fetcher, nil
}

// fetch runs one token fetch under the timeout and records its outcome.
func fetch(ctx context.Context, opts Options, source, audience string, fn func(ctx context.Context) (*oauth2.Token, error)) (*oauth2.Token, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	tok, err := fn(ctx)
	if err == nil && (tok == nil || tok.AccessToken == "") {
		err = fmt.Errorf("%s returned an empty token", source)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	opts.Metrics.RecordTokenFetch(source, outcome, time.Since(start))

	if err != nil {
		return nil, &TokenError{Audience: audience, Cause: err}
	}
	return tok, nil
}

func accessToken(tok *oauth2.Token, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
