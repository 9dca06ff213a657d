package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
)

// setupTimeout bounds connecting and migrating.
const setupTimeout = 30 * time.Second

// Open connects to the test database and applies all migrations. The test
// is skipped when no database URL is configured. The connection is closed
// when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skipf("%s or %s not set; skipping database test", EnvTestDatabaseURL, EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 4})
	require.NoError(t, err, "failed to connect to %s", MaskedURL(url))
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, "up", nil), "failed to apply migrations")
	return db
}
