package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskHandler handles task-related HTTP requests. Role checks happen in the
// authorization gate; the handler only needs the Principal for ownership.
type TaskHandler struct {
	taskStore store.TaskStore
	now       func() time.Time
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		now:       time.Now,
	}
}

// List handles GET /api/tasks. Supported query parameters are status,
// created_by, limit and offset.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.taskStore.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	items := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[TaskResponse]{
		Items:  items,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := domain.NewTask(principal.SubjectID, req.Title, req.Description, utcPtr(req.DueAt))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	logger.FromContext(r.Context()).Debug("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	task.Status = domain.TaskStatus(req.Status)
	task.DueAt = utcPtr(req.DueAt)
	task.UpdatedAt = h.now().UTC()
	if err := task.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		return store.TaskFilter{}, err
	}
	filter := store.TaskFilter{Limit: limit, Offset: offset}

	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := domain.TaskStatus(strings.ToLower(raw))
		if !status.Valid() {
			return store.TaskFilter{}, domain.NewValidationError("status", "must be one of todo, in_progress, done", domain.ErrValidation)
		}
		filter.Status = status
	}
	if raw := q.Get("created_by"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError("created_by", "has invalid format", domain.ErrInvalidID)
		}
		filter.CreatedBy = id
	}

	return filter, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
