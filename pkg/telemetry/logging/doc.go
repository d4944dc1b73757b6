// Package logging configures the process-wide log/slog logger.
//
// # Overview
//
// The package wraps log/slog to provide:
//   - JSON or text output
//   - A level that can change at runtime (config hot reload)
//   - request_id, trace_id and span_id taken from the context
//   - Redaction of bearer tokens, JWTs and credential-named attributes
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:        "info",
//	    Format:       "json",
//	    RedactTokens: true,
//	})
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "forwarding", "authorization", "Bearer eyJ...")
//	// {"msg":"forwarding","request_id":"req-123","authorization":"Bear***"}
//
// Packages log through slog's default logger; only the command wiring
// holds a *Logger.
package logging
