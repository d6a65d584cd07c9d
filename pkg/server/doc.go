// Package server exposes plan scheduling over HTTP.
//
// Routes:
//
//	POST /v1/schedule   schedule a plan, returning batches and rendered outputs
//	GET  /healthz       liveness, including a cache ping when supported
//	GET  /version       build information
//
// Every response carries an X-Request-Id header. A request ID supplied by
// the client is echoed back; otherwise one is generated. Errors are JSON
// objects with the machine-readable code from pkg/errors:
//
//	{"error": {"code": "CIRCULAR_DEPENDENCY", "message": "...", "cycle": ["a", "b", "a"]}, "request_id": "..."}
package server
