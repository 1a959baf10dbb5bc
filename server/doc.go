// Package server exposes supplement resolution over HTTP.
//
// Two endpoints: GET /search resolves a query through the full pipeline
// and GET /health reports liveness plus the catalog size. A found query
// answers 200, a miss answers 404 with the enqueued flag set, and
// malformed input answers 400. Every search response carries a request
// id, echoed in the X-Request-Id header for log correlation.
package server
