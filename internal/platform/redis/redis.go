// Package redis provides the Redis-backed token revocation store.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// revokedValue is stored under each key; only the key's existence matters.
const revokedValue = "1"

// RevocationStore implements auth.RevocationStore on top of Redis key expiry.
// Keys are the raw token ids.
type RevocationStore struct {
	client goredis.UniversalClient
}

var _ auth.RevocationStore = (*RevocationStore)(nil)

// NewRevocationStore wraps an existing client.
func NewRevocationStore(client goredis.UniversalClient) *RevocationStore {
	return &RevocationStore{client: client}
}

// Open connects to Redis using cfg and verifies the connection with PING.
func Open(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", auth.ErrRevocationUnavailable, cfg.Addr, err)
	}
	return client, nil
}

// Revoke sets tokenID with the given expiry. Sub-second TTLs are sent as PX.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, tokenID, revokedValue, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", auth.ErrRevocationUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether a revocation key for tokenID exists.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("%w: exists: %w", auth.ErrRevocationUnavailable, err)
	}
	return n > 0, nil
}
