package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	IssueFn  func(ctx context.Context, lifetime time.Duration, claims auth.Claims) (*auth.Token, error)
	VerifyFn func(ctx context.Context, raw string) (*auth.Payload, error)

	// Default values used when functions aren't explicitly defined
	Token     *auth.Token
	IssueErr  error
	Payload   *auth.Payload
	VerifyErr error
}

var _ auth.TokenService = (*MockTokenService)(nil)

// Issue implements auth.TokenService
func (m *MockTokenService) Issue(ctx context.Context, lifetime time.Duration, claims auth.Claims) (*auth.Token, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, lifetime, claims)
	}
	return m.Token, m.IssueErr
}

// Verify implements auth.TokenService
func (m *MockTokenService) Verify(ctx context.Context, raw string) (*auth.Payload, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, raw)
	}
	return m.Payload, m.VerifyErr
}
