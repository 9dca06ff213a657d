package auth

import (
	"context"
	"time"
)

// RevocationStore records revoked token ids until their natural expiry.
//
// Implementations must be safe for concurrent use and must return errors
// rather than report "not revoked" when the backing store is unreachable.
type RevocationStore interface {
	// Revoke marks tokenID as revoked for ttl. A ttl <= 0 is a no-op.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether tokenID currently has a revocation entry.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RemainingLifetime is the revocation TTL for a token expiring at expiresAt.
// It is never negative.
func RemainingLifetime(expiresAt, now time.Time) time.Duration {
	if ttl := expiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}

// RevokeUntilExpiry revokes tokenID for the rest of its lifetime.
// An already expired token needs no entry and nothing is written.
func RevokeUntilExpiry(
	ctx context.Context,
	store RevocationStore,
	tokenID string,
	expiresAt, now time.Time,
) error {
	ttl := RemainingLifetime(expiresAt, now)
	if ttl == 0 {
		return nil
	}
	return store.Revoke(ctx, tokenID, ttl)
}
