package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"quotes-hq/bff/pkg/auth"
	"quotes-hq/bff/pkg/telemetry/logging"
	"quotes-hq/bff/pkg/telemetry/metrics"
	"quotes-hq/bff/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Call outcomes, used as the "outcome" metric label.
const (
	OutcomeOK         = "ok"
	OutcomeTimeout    = "timeout"
	OutcomeCanceled   = "canceled"
	OutcomeTokenError = "token_error"
	OutcomeError      = "error"
)

// JSONContentType is sent with every POST body.
const JSONContentType = "application/json; charset=utf-8"

// Client sends authenticated requests to the upstream services through one
// shared HTTP client. It is safe for concurrent use.
//
// Calls are never retried: every I/O failure, including a failed token
// fetch, is returned to the caller as is.
type Client struct {
	config ClientConfig
	http   *http.Client
	tokens auth.Provider

	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every call on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) { c.metrics = collector }
}

// WithTracer wraps every call in a client span.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client. cfg is copied; the timeouts cannot change for
// the lifetime of the client.
func NewClient(cfg ClientConfig, tokens auth.Provider, opts ...Option) *Client {
	c := &Client{
		config: cfg,
		http:   NewHTTPClient(cfg),
		tokens: tokens,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewHTTPClient returns an unauthenticated client whose connections enforce
// the read and write timeouts of cfg.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	return &http.Client{Transport: newTransport(cfg)}
}

// Config returns the timeouts the client was built with.
func (c *Client) Config() ClientConfig {
	return c.config
}

// HTTPClient returns the shared, timeout-bounded HTTP client. It adds no
// authentication.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Get fetches target/path and returns the response body whatever the
// status code.
func (c *Client) Get(ctx context.Context, target Target, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, target, path, nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// Post sends payload as JSON to target/path and returns the response body
// whatever the status code.
func (c *Client) Post(ctx context.Context, target Target, path string, payload []byte) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, target, path, payload)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// Delete sends DELETE to target/path and returns the upstream status code.
func (c *Client) Delete(ctx context.Context, target Target, path string) (int, error) {
	resp, err := c.do(ctx, http.MethodDelete, target, path, nil)
	if err != nil {
		return 0, err
	}
	return resp.status, nil
}

// response is the status and body of a completed call.
type response struct {
	status int
	body   []byte
}

// GetWithStatus is Get returning the upstream status as well. Handlers use
// it to log non-2xx answers they still pass on.
func (c *Client) GetWithStatus(ctx context.Context, target Target, path string) (int, []byte, error) {
	resp, err := c.do(ctx, http.MethodGet, target, path, nil)
	if err != nil {
		return 0, nil, err
	}
	return resp.status, resp.body, nil
}

// PostWithStatus is Post returning the upstream status as well.
func (c *Client) PostWithStatus(ctx context.Context, target Target, path string, payload []byte) (int, []byte, error) {
	resp, err := c.do(ctx, http.MethodPost, target, path, payload)
	if err != nil {
		return 0, nil, err
	}
	return resp.status, resp.body, nil
}

func (c *Client) do(ctx context.Context, method string, target Target, path string, payload []byte) (resp response, err error) {
	if !target.Configured() {
		return response{}, fmt.Errorf("%s: %w", target.Name, ErrNotConfigured)
	}

	url := target.URL(path)

	ctx, span := c.tracer.Start(ctx, "upstream "+method+" "+target.Name, trace.WithSpanKind(trace.SpanKindClient))
	tracing.SetUpstreamAttributes(span, target.Name, method, url)

	start := time.Now()
	defer func() {
		outcome := Classify(err)
		c.metrics.RecordUpstreamCall(target.Name, method, outcome, time.Since(start))
		tracing.SetResponseAttributes(span, resp.status, outcome)
		if err != nil {
			tracing.SetError(span, err)
		}
		span.End()
	}()

	token, err := c.tokens.Token(ctx, url)
	if err != nil {
		return response{}, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", JSONContentType)
	}
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	tracing.Inject(ctx, req.Header)

	c.logger.DebugContext(ctx, "sending upstream request",
		"target", target.Name,
		"method", method,
		"url", url,
	)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{status: httpResp.StatusCode}, err
	}

	return response{status: httpResp.StatusCode, body: data}, nil
}

// Classify maps a call error to its outcome label.
func Classify(err error) string {
	if err == nil {
		return OutcomeOK
	}

	var tokenErr *auth.TokenError
	if errors.As(err, &tokenErr) {
		return OutcomeTokenError
	}
	if errors.Is(err, context.Canceled) {
		return OutcomeCanceled
	}
	if IsTimeout(err) {
		return OutcomeTimeout
	}
	return OutcomeError
}

// IsTimeout reports whether err is a socket or context timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
