// Package upstream sends authenticated requests to the services behind the
// BFF.
//
// Every call builds the target URL as base + "/" + path, mints a bearer
// token whose audience is exactly that URL, and dispatches it through one
// shared HTTP client. The client enforces a read timeout and a write
// timeout on every socket operation, plus a connect timeout; it never
// retries.
//
//	client := upstream.NewClient(upstream.ClientConfigFrom(&cfg.Upstreams), tokens,
//	    upstream.WithMetrics(collector),
//	    upstream.WithTracer(tracer),
//	)
//	body, err := client.Get(ctx, targets.Quotes, "quotes")
package upstream
