package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockRevocationStore implements auth.RevocationStore for testing.
// Without overrides it remembers revoked ids and ignores TTLs.
type MockRevocationStore struct {
	RevokeFn    func(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevokedFn func(ctx context.Context, tokenID string) (bool, error)

	mu      sync.Mutex
	revoked map[string]time.Duration
	checks  int
}

var _ auth.RevocationStore = (*MockRevocationStore)(nil)

// NewMockRevocationStore creates an empty store.
func NewMockRevocationStore() *MockRevocationStore {
	return &MockRevocationStore{revoked: make(map[string]time.Duration)}
}

// Revoke implements auth.RevocationStore
func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, tokenID, ttl)
	}
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = ttl
	return nil
}

// IsRevoked implements auth.RevocationStore
func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	m.checks++
	m.mu.Unlock()

	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// TTL returns the ttl recorded for tokenID and whether it was revoked.
func (m *MockRevocationStore) TTL(tokenID string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.revoked[tokenID]
	return ttl, ok
}

// Checks returns how many times IsRevoked was called.
func (m *MockRevocationStore) Checks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}
