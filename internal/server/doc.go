// Package server exposes a polyglot Service over HTTP.
//
// Routes:
//
//	GET    /v1/text       text tree for Accept-Language (or ?lang=), optional ?path=a.b
//	GET    /v1/chain      preference chain for the same header
//	POST   /v1/reset      discard the source; the next request reloads it
//	GET    /v1/cache      cached headers, most recent first
//	DELETE /v1/cache      drop every cached tree
//	GET    /health/live   liveness
//	GET    /health/ready  readiness, including a source load check
//
// Text responses carry Content-Language and Vary: Accept-Language.
package server
