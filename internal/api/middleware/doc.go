// Package middleware contains the HTTP middleware that establishes request
// context and enforces authorization.
//
// Order matters: Correlator.Middleware runs first so every later layer, and
// every goroutine started from the request context, sees the request id and
// request-scoped logger. Recoverer sits inside it so a panic still produces
// exactly one completion log line with status 500. Gate.Guard wraps the
// individual routes.
package middleware
