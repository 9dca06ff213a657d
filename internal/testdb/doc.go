// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests skip when no database URL is configured, so
// the default test run needs no external services.
package testdb
