// Package shared holds the request-scoped context values and the JSON
// request/response helpers used by both the middleware and the handlers.
package shared
