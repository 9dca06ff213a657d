package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevocationStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewRevocationStore(time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti", time.Hour))
	revoked, err = store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewRevocationStore(time.Minute)

	require.NoError(t, store.Revoke(ctx, "short", 20*time.Millisecond))
	require.Eventually(t, func() bool {
		revoked, err := store.IsRevoked(ctx, "short")
		return err == nil && !revoked
	}, time.Second, 5*time.Millisecond)
}

func TestRevocationStore_NonPositiveTTLIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewRevocationStore(time.Minute)

	require.NoError(t, store.Revoke(ctx, "zero", 0))
	require.NoError(t, store.Revoke(ctx, "negative", -time.Second))
	assert.Zero(t, store.Len())
}

func TestRevocationStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRevocationStore(time.Minute).IsRevoked(ctx, "jti")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRevocationStore_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewRevocationStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("jti-%d", i)
			assert.NoError(t, store.Revoke(ctx, id, time.Hour))
			revoked, err := store.IsRevoked(ctx, id)
			assert.NoError(t, err)
			assert.True(t, revoked)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 32, store.Len())
}
