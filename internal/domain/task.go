package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the progress of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong   = errors.New("task title must be at most 200 characters long")
	ErrEmptyTaskCreator   = errors.New("task creator cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrTaskDescriptionLen = errors.New("task description must be at most 5000 characters long")
)

const (
	maxTaskTitleLength       = 200
	maxTaskDescriptionLength = 5000
)

// Task is a unit of work tracked by the service.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in the todo state.
func NewTask(createdBy uuid.UUID, title, description string, dueAt *time.Time) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      TaskStatusTodo,
		CreatedBy:   createdBy,
		DueAt:       dueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > maxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	if len(t.Description) > maxTaskDescriptionLength {
		return ErrTaskDescriptionLen
	}

	if t.CreatedBy == uuid.Nil {
		return ErrEmptyTaskCreator
	}

	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	return nil
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}
