// Package notify delivers outbound mail asynchronously.
//
// Handlers enqueue messages on a Dispatcher, which runs them on a fixed pool
// of workers. Each job keeps the values of the request context that queued
// it (request id, request-scoped logger) but not its cancellation, so mail
// still goes out after the response has been written.
package notify
