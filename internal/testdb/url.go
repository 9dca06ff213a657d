package testdb

import (
	"os"

	"github.com/phrazzld/tasks-api/internal/redact"
)

// Environment variables checked for the test database URL, in order.
const (
	EnvTestDatabaseURL = "TASKS_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// DatabaseURL returns the first configured test database URL, or "".
func DatabaseURL() string {
	for _, key := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// MaskedURL returns url with credentials removed for logging.
func MaskedURL(url string) string {
	return redact.String(url)
}
