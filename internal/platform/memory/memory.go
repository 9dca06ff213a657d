// Package memory provides an in-process token revocation store for single
// instance deployments and tests.
package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// RevocationStore implements auth.RevocationStore with go-cache item expiry.
// It is not shared across processes.
type RevocationStore struct {
	entries *cache.Cache
}

var _ auth.RevocationStore = (*RevocationStore)(nil)

// NewRevocationStore creates a store whose expired entries are purged every
// cleanupInterval. Expired entries are never reported as revoked, even before
// they are purged.
func NewRevocationStore(cleanupInterval time.Duration) *RevocationStore {
	return &RevocationStore{
		entries: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

// Revoke records tokenID for ttl; a ttl <= 0 is a no-op.
func (s *RevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.entries.Set(tokenID, struct{}{}, ttl)
	return nil
}

// IsRevoked reports whether tokenID has an unexpired entry.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, found := s.entries.Get(tokenID)
	return found, nil
}

// Len returns the number of entries, including expired ones not yet purged.
func (s *RevocationStore) Len() int {
	return s.entries.ItemCount()
}
