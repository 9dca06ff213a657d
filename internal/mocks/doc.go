// Package mocks provides hand-written test doubles for the interfaces used
// across the application.
//
// Each mock has a function field per interface method. When a field is nil
// the mock falls back to a simple in-memory behavior, so most tests only
// override the one call they care about:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, errors.New("database unavailable")
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Keep the in-memory fallback safe for concurrent use
package mocks
