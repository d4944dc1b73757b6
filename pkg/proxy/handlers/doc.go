// Package handlers serves the BFF endpoints.
//
// Each proxy handler runs the same steps: validate the inbound request,
// forward it through the authenticated upstream client, then respond.
//
//	GET    /quotes       -> quotes service GET  <quotes_url>/quotes
//	POST   /quotes       -> quotes service POST <quotes_url>/quotes
//	DELETE /quotes/{id}  -> quotes service DELETE <quotes_url>/quotes/{id}
//	GET    /faulty       -> faulty service GET  <faulty_url>/
//	GET    /start        -> local, reports whether reference metadata loaded
//	GET    /audit        -> local, recent audit records
//
// # Responses
//
// GET and POST answer 200 with the upstream body, whatever status the
// upstream returned; a non-2xx upstream status is only logged. DELETE
// passes the upstream status code through with no body. Any upstream I/O
// failure, including a failed token fetch or an unconfigured upstream URL,
// is answered with 500 and no body. Malformed input gets 400.
//
// # Audit
//
// Creates and deletes the quotes service accepted are handed to the audit
// recorder after the upstream call. Recording never blocks or fails the
// request.
package handlers
