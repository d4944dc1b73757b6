// Package middleware provides the HTTP middleware wrapped around every
// route of the BFF.
//
// # Middleware Chain
//
// The server installs the chain on the chi router, outermost first:
//
//	router.Use(
//	    middleware.RecoveryMiddleware,
//	    middleware.LoggingMiddleware(logger),
//	    middleware.RequestIDMiddleware,
//	    middleware.MetricsMiddleware(collector),
//	    middleware.TracingMiddleware(tracer),
//	    middleware.CORSMiddleware(&cfg.Server.CORS),
//	    middleware.RateLimitMiddleware(&cfg.Server.RateLimit),
//	)
//
// Recovery is outermost so a panic anywhere below still produces a 500.
// Rate limiting is innermost so rejected requests are still logged,
// counted and traced.
//
// # Routes
//
// Logging, metrics and tracing label requests by chi route pattern
// ("/quotes/{id}") rather than raw path. The pattern is read after the
// handler returns, once chi has finished routing. Requests that matched no
// route are labelled "unmatched".
//
// # Request ID
//
// RequestIDMiddleware keeps a client-supplied X-Request-ID or generates a
// UUID. The ID is stored with logging.WithRequestID, echoed in the
// response and forwarded to the upstream services.
//
// # Recovery
//
// RecoveryMiddleware answers 500 with an empty body, the same response an
// upstream failure produces. The panic value and stack are logged.
package middleware
