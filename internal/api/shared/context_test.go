package shared

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := RequestContextFrom(ctx)
	assert.False(t, ok)
	assert.Empty(t, GetRequestID(ctx))

	rc := &RequestContext{RequestID: "abc", Method: "GET", URL: "/api/tasks", StartTime: time.Now()}
	ctx = WithRequestContext(ctx, rc)

	got, ok := RequestContextFrom(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)
	assert.Equal(t, "abc", GetRequestID(ctx))
}

func TestPrincipal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := PrincipalFrom(ctx)
	assert.False(t, ok)

	_, ok = PrincipalFrom(WithPrincipal(ctx, nil))
	assert.False(t, ok, "a nil principal is not a principal")

	p := &Principal{SubjectID: uuid.New(), Role: domain.RoleEditor, TokenID: "jti"}
	got, ok := PrincipalFrom(WithPrincipal(ctx, p))
	require.True(t, ok)
	assert.Equal(t, p.SubjectID, got.SubjectID)
}

func TestNewRequestID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewRequestID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
