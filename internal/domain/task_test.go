package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	creator := uuid.New()
	due := time.Now().Add(24 * time.Hour).UTC()

	task, err := NewTask(creator, "  Write report  ", "quarterly numbers", &due)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Equal(t, creator, task.CreatedBy)
	assert.Equal(t, &due, task.DueAt)
}

func TestNewTaskValidation(t *testing.T) {
	creator := uuid.New()

	_, err := NewTask(creator, "   ", "", nil)
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)

	_, err = NewTask(uuid.Nil, "title", "", nil)
	assert.ErrorIs(t, err, ErrEmptyTaskCreator)

	_, err = NewTask(creator, strings.Repeat("t", 201), "", nil)
	assert.ErrorIs(t, err, ErrTaskTitleTooLong)

	_, err = NewTask(creator, "title", strings.Repeat("d", 5001), nil)
	assert.ErrorIs(t, err, ErrTaskDescriptionLen)
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, TaskStatus("archived").Valid())
}
