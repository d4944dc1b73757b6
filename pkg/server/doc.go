// Package server provides the BFF HTTP server.
//
// This package ties together the proxy handlers, the middleware chain, the
// upstream client, the audit trail and the probes, and manages the server
// lifecycle: startup initialization, graceful shutdown and live config
// reloads.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Builds the token provider, the shared upstream client and the metrics
//     collector from configuration
//   - Mounts the BFF routes on a chi router behind the middleware chain
//   - Runs startup initialization and drives the startup gate
//   - Schedules audit retention and watches the config file
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := server.New(cfg, server.Options{Logger: logger.Slog()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//
//  1. Recovery: converts panics into an empty 500
//  2. Logging: one line per request with the matched chi route
//  3. Request ID: reads or generates X-Request-ID
//  4. Metrics: request count and latency by route
//  5. Tracing: server span continuing any incoming traceparent
//  6. CORS
//  7. Rate limiting, applied to the BFF routes only
//
// # Routes
//
//   - GET /quotes, POST /quotes, DELETE /quotes/{id}: quotes service
//   - GET /faulty: faulty service
//   - GET /start: readiness message
//   - GET /audit: recent audit records, when the audit trail is enabled
//   - GET /health, /ready, /startup, /version: probes
//   - GET /metrics: Prometheus metrics, when enabled
//
// # Startup
//
// Serve runs Initialize before accepting connections. Initialize checks that
// the upstream URLs are configured and fetches the reference metadata once.
// The gate opens on success; a failure keeps it down and the server keeps
// serving so the probes can report why.
//
// # Graceful Shutdown
//
// When ctx is cancelled the server stops accepting connections, drains
// in-flight requests within ShutdownTimeout, flushes the audit recorder and
// the tracer, and closes the audit storage.
package server
