// Package proxy holds the request plumbing shared by the BFF handlers and
// the startup sequence that sets the health gate.
//
// # Request Flow
//
// Every proxied request moves through the same states:
//
//	RECEIVED -> VALIDATING -> FORWARDING -> RESPONDING
//
// Validation failures (DecodeJSONBody, ParseIntParam) produce a
// *RequestError and a 400. Any failure while forwarding, whether a token
// fetch, dial, socket timeout or reset, is logged by HandleUpstreamError
// and answered with 500 and no body. Nothing is retried.
//
// # Initialization
//
// Initialize runs once at startup:
//
//	gate := health.NewStartupGate(collector.SetStartupGate)
//	store := &proxy.ReferenceMetadata{}
//	if err := proxy.Initialize(ctx, client, targets, gate, store, logger); err != nil {
//	    logger.Warn("startup probe failed", "error", err)
//	}
//
// A missing quotes_url or reference_url latches the gate DOWN. Otherwise
// the reference metadata is fetched once; the gate goes UP on success and
// stays DOWN on failure. The process keeps serving either way.
package proxy
