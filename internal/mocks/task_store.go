package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing with an in-memory fallback.
type MockTaskStore struct {
	CreateFn          func(ctx context.Context, task *domain.Task) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn            func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn          func(ctx context.Context, task *domain.Task) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	DeleteByCreatorFn func(ctx context.Context, userID uuid.UUID) (int64, error)

	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a store seeded with tasks.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	m := &MockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

// Len returns the number of stored tasks.
func (m *MockTaskStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

// List implements store.TaskStore
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.RLock()
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != uuid.Nil && t.CreatedBy != filter.CreatedBy {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*domain.Task{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update implements store.TaskStore
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

// Delete implements store.TaskStore
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// DeleteByCreator implements store.TaskStore
func (m *MockTaskStore) DeleteByCreator(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.DeleteByCreatorFn != nil {
		return m.DeleteByCreatorFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, t := range m.tasks {
		if t.CreatedBy == userID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx returns the same mock; transactions are not simulated.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
