package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseURL_Precedence(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "postgres://app:pw@db/general")
	t.Setenv(EnvTestDatabaseURL, "")
	assert.Equal(t, "postgres://app:pw@db/general", DatabaseURL())

	t.Setenv(EnvTestDatabaseURL, "postgres://app:pw@db/test")
	assert.Equal(t, "postgres://app:pw@db/test", DatabaseURL())
}

func TestMaskedURL(t *testing.T) {
	masked := MaskedURL("postgres://app:s3cret@db:5432/tasks")
	assert.NotContains(t, masked, "s3cret")
	assert.Contains(t, masked, "db:5432/tasks")
}
