package mocks

import (
	"context"
	"sync/atomic"

	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTransactor implements store.Transactor without a database. fn receives
// a nil *sql.Tx, which the in-memory mock stores ignore in WithTx.
type MockTransactor struct {
	RunFn func(ctx context.Context, fn store.TxFn) error

	runs atomic.Int32
}

var _ store.Transactor = (*MockTransactor)(nil)

// RunInTransaction implements store.Transactor
func (m *MockTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.runs.Add(1)
	if m.RunFn != nil {
		return m.RunFn(ctx, fn)
	}
	return fn(ctx, nil)
}

// Runs reports how many transactions were started.
func (m *MockTransactor) Runs() int {
	return int(m.runs.Load())
}
