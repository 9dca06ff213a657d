package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

const taskColumns = `id, title, description, status, created_by, due_at, created_at, updated_at`

// defaultTaskListLimit applies when a TaskFilter has no limit.
const defaultTaskListLimit = 50

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db store.DBTX
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.Title, task.Description, string(task.Status), task.CreatedBy,
		nullTime(task.DueAt), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to save task",
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContext(ctx).Error("failed to get task",
			slog.String("task_id", id.String()),
			slog.Any("error", err))
		return nil, store.NewStoreError("task", "get_by_id", "query failed", MapError(err))
	}
	return task, nil
}

// List implements store.TaskStore.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	query, args := buildTaskListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to query tasks", slog.Any("error", err))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "iterate failed", err)
	}
	return tasks, nil
}

// Update implements store.TaskStore. CreatedBy and CreatedAt are immutable.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3, due_at = $4, updated_at = $5 WHERE id = $6`,
		task.Title, task.Description, string(task.Status), nullTime(task.DueAt), task.UpdatedAt, task.ID,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err))
		return store.NewStoreError("task", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete task",
			slog.String("task_id", id.String()),
			slog.Any("error", err))
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// DeleteByCreator implements store.TaskStore.
func (s *PostgresTaskStore) DeleteByCreator(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE created_by = $1`, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete tasks by creator",
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
		return 0, store.NewStoreError("task", "delete_by_creator", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func buildTaskListQuery(filter store.TaskFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CreatedBy != uuid.Nil {
		args = append(args, filter.CreatedBy)
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTaskListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, " ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
		dueAt  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.CreatedBy, &dueAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	if dueAt.Valid {
		due := dueAt.Time
		t.DueAt = &due
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
