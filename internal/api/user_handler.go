package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// UserHandler serves the current user's profile and the admin user
// management endpoints.
type UserHandler struct {
	userStore  store.UserStore
	taskStore  store.TaskStore
	transactor store.Transactor
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	userStore store.UserStore,
	taskStore store.TaskStore,
	transactor store.Transactor,
) *UserHandler {
	return &UserHandler{
		userStore:  userStore,
		taskStore:  taskStore,
		transactor: transactor,
	}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), principal.SubjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	users, err := h.userStore.List(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	items := make([]UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, userToResponse(u))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[UserResponse]{
		Items:  items,
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateRole handles PATCH /api/users/{id}/role. Administrators cannot
// change their own role, so the last admin cannot lock everyone out.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	principal, userID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if userID == principal.SubjectID {
		HandleAPIError(w, r, ErrSelfModification, "")
		return
	}

	if err := h.userStore.UpdateRole(r.Context(), userID, role); err != nil {
		HandleAPIError(w, r, err, "Failed to update role")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}

	logger.FromContext(r.Context()).Info("user role updated",
		slog.String("target_user_id", userID.String()),
		slog.String("role", role.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Delete handles DELETE /api/users/{id}. The user's tasks are removed in
// the same transaction.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, userID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if userID == principal.SubjectID {
		HandleAPIError(w, r, ErrSelfModification, "")
		return
	}

	var removedTasks int64
	err := h.transactor.RunInTransaction(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		n, err := h.taskStore.WithTx(tx).DeleteByCreator(ctx, userID)
		if err != nil {
			return err
		}
		removedTasks = n
		return h.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}

	logger.FromContext(r.Context()).Info("user deleted",
		slog.String("target_user_id", userID.String()),
		slog.Int64("tasks_removed", removedTasks))
	w.WriteHeader(http.StatusNoContent)
}
