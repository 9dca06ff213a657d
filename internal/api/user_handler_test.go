package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	handler    *UserHandler
	users      *mocks.MockUserStore
	tasks      *mocks.MockTaskStore
	transactor *mocks.MockTransactor
}

func newUserFixture(users ...*domain.User) *userFixture {
	f := &userFixture{
		users:      mocks.NewMockUserStore(users...),
		tasks:      mocks.NewMockTaskStore(),
		transactor: &mocks.MockTransactor{},
	}
	f.handler = NewUserHandler(f.users, f.tasks, f.transactor)
	return f
}

func testUser(role domain.Role) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:             uuid.New(),
		Email:          uuid.NewString()[:8] + "@example.com",
		Name:           "Test User",
		Role:           role,
		HashedPassword: "$2a$04$hash",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUserHandler_Me(t *testing.T) {
	t.Parallel()

	user := testUser(domain.RoleEditor)
	f := newUserFixture(user)
	principal := newPrincipal(domain.RoleEditor)
	principal.SubjectID = user.ID

	rec := httptest.NewRecorder()
	f.handler.Me(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), principal))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[UserResponse](t, rec)
	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, domain.RoleEditor, resp.Role)
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestUserHandler_List(t *testing.T) {
	t.Parallel()

	f := newUserFixture(testUser(domain.RoleReadOnly), testUser(domain.RoleEditor), testUser(domain.RoleAdmin))

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantItems  int
		wantLimit  int
	}{
		{"defaults", "", http.StatusOK, 3, DefaultPageSize},
		{"limit", "?limit=2", http.StatusOK, 2, 2},
		{"offset", "?offset=2", http.StatusOK, 1, DefaultPageSize},
		{"clamped limit", "?limit=1000", http.StatusOK, 3, MaxPageSize},
		{"bad limit", "?limit=zero", http.StatusBadRequest, 0, 0},
		{"negative offset", "?offset=-1", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/users"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decodeBody[ListResponse[UserResponse]](t, rec)
			assert.Len(t, resp.Items, tt.wantItems)
			assert.Equal(t, tt.wantLimit, resp.Limit)
		})
	}
}

func TestUserHandler_UpdateRole(t *testing.T) {
	t.Parallel()

	target := testUser(domain.RoleReadOnly)
	admin := newPrincipal(domain.RoleAdmin)
	f := newUserFixture(target)

	tests := []struct {
		name       string
		targetID   string
		payload    any
		wantStatus int
		wantRole   domain.Role
	}{
		{"promote", target.ID.String(), map[string]any{"role": "editor"}, http.StatusOK, domain.RoleEditor},
		{"unknown role", target.ID.String(), map[string]any{"role": "root"}, http.StatusBadRequest, ""},
		{"bad id", "nope", map[string]any{"role": "editor"}, http.StatusBadRequest, ""},
		{"missing user", uuid.NewString(), map[string]any{"role": "editor"}, http.StatusNotFound, ""},
		{"self", admin.SubjectID.String(), map[string]any{"role": "readonly"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPatch, "/api/users/"+tt.targetID+"/role", tt.payload)
			req = withURLParam(withPrincipal(req, admin), "id", tt.targetID)
			rec := httptest.NewRecorder()

			f.handler.UpdateRole(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantRole, decodeBody[UserResponse](t, rec).Role)
			}
		})
	}
}

func TestUserHandler_Delete_RemovesTasksInTransaction(t *testing.T) {
	t.Parallel()

	target := testUser(domain.RoleEditor)
	f := newUserFixture(target)
	for i := 0; i < 3; i++ {
		task, err := domain.NewTask(target.ID, "task", "", nil)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), task))
	}
	other, err := domain.NewTask(uuid.New(), "someone else's", "", nil)
	require.NoError(t, err)
	require.NoError(t, f.tasks.Create(context.Background(), other))

	req := withURLParam(withPrincipal(httptest.NewRequest(http.MethodDelete, "/api/users/"+target.ID.String(), nil),
		newPrincipal(domain.RoleAdmin)), "id", target.ID.String())
	rec := httptest.NewRecorder()
	f.handler.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, f.transactor.Runs())
	assert.Equal(t, 1, f.tasks.Len())
	_, err = f.users.GetByID(context.Background(), target.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserHandler_Delete_Errors(t *testing.T) {
	t.Parallel()

	admin := newPrincipal(domain.RoleAdmin)

	t.Run("self", func(t *testing.T) {
		f := newUserFixture()
		req := withURLParam(withPrincipal(httptest.NewRequest(http.MethodDelete, "/", nil), admin),
			"id", admin.SubjectID.String())
		rec := httptest.NewRecorder()
		f.handler.Delete(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, f.transactor.Runs())
	})

	t.Run("missing user", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.NewString()
		req := withURLParam(withPrincipal(httptest.NewRequest(http.MethodDelete, "/", nil), admin), "id", id)
		rec := httptest.NewRecorder()
		f.handler.Delete(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", errorMessage(t, rec))
	})

	t.Run("transaction failure", func(t *testing.T) {
		target := testUser(domain.RoleReadOnly)
		f := newUserFixture(target)
		f.transactor.RunFn = func(context.Context, store.TxFn) error {
			return store.ErrTransactionFailed
		}
		req := withURLParam(withPrincipal(httptest.NewRequest(http.MethodDelete, "/", nil), admin),
			"id", target.ID.String())
		rec := httptest.NewRecorder()
		f.handler.Delete(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to delete user", errorMessage(t, rec))
	})

	t.Run("task cleanup failure aborts", func(t *testing.T) {
		target := testUser(domain.RoleReadOnly)
		f := newUserFixture(target)
		f.tasks.DeleteByCreatorFn = func(context.Context, uuid.UUID) (int64, error) {
			return 0, errors.New("deadlock detected")
		}
		req := withURLParam(withPrincipal(httptest.NewRequest(http.MethodDelete, "/", nil), admin),
			"id", target.ID.String())
		rec := httptest.NewRecorder()
		f.handler.Delete(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		_, err := f.users.GetByID(context.Background(), target.ID)
		assert.NoError(t, err, "user must survive a failed cleanup")
	})
}
