package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

func newTestStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRevocationStore(client), mr
}

func TestRevocationStore_TTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newTestStore(t)
	ttl := 10 * time.Minute

	require.NoError(t, store.Revoke(ctx, "jti-1", ttl))
	assert.True(t, mr.Exists("jti-1"))
	assert.Equal(t, ttl, mr.TTL("jti-1"))

	mr.FastForward(ttl - time.Second)
	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked, "entry must survive until its ttl")

	mr.FastForward(2 * time.Second)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry must expire with the token")
}

func TestRevocationStore_UnknownToken(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	revoked, err := store.IsRevoked(context.Background(), "never-revoked")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_NonPositiveTTLIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Revoke(ctx, "zero", 0))
	require.NoError(t, store.Revoke(ctx, "negative", -time.Minute))
	assert.False(t, mr.Exists("zero"))
	assert.False(t, mr.Exists("negative"))
}

func TestRevocationStore_SubSecondTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Revoke(ctx, "short", 1500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, mr.TTL("short"))
}

func TestRevocationStore_Unavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newTestStore(t)
	mr.Close()

	revoked, err := store.IsRevoked(ctx, "jti")
	assert.ErrorIs(t, err, auth.ErrRevocationUnavailable)
	assert.False(t, revoked)

	err = store.Revoke(ctx, "jti", time.Minute)
	assert.ErrorIs(t, err, auth.ErrRevocationUnavailable)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client, err := Open(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), config.RedisConfig{Addr: addr})
	assert.ErrorIs(t, err, auth.ErrRevocationUnavailable)
}
