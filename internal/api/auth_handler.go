package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/notify"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MsgInvalidCredentials is returned for any failed login. It does not reveal
// whether the email exists.
const MsgInvalidCredentials = "Invalid credentials"

// MailQueue accepts outbound mail for asynchronous delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, msg notify.Message) error
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	tokenService     auth.TokenService
	revocations      auth.RevocationStore
	passwordVerifier auth.PasswordVerifier
	mail             MailQueue
	tokenLifetime    time.Duration
	now              func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// mail may be nil, in which case no welcome message is sent.
func NewAuthHandler(
	userStore store.UserStore,
	tokenService auth.TokenService,
	revocations auth.RevocationStore,
	passwordVerifier auth.PasswordVerifier,
	mail MailQueue,
	tokenLifetime time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		tokenService:     tokenService,
		revocations:      revocations,
		passwordVerifier: passwordVerifier,
		mail:             mail,
		tokenLifetime:    tokenLifetime,
		now:              time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := domain.NewUser(req.Email, req.Name, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	token, ok := h.issueToken(w, r, user)
	if !ok {
		return
	}

	h.sendWelcome(r.Context(), user)

	shared.RespondWithJSON(w, r, http.StatusCreated, authResponse(user, token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, MsgInvalidCredentials)
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgInvalidCredentials, err,
			shared.WithElevatedLogLevel())
		return
	}

	token, ok := h.issueToken(w, r, user)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(user, token))
}

// Logout handles POST /api/auth/logout. The presented token is revoked for
// the rest of its lifetime.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	err := auth.RevokeUntilExpiry(r.Context(), h.revocations,
		principal.TokenID, principal.TokenExpiry, h.now())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContext(r.Context()).Info("session revoked",
		slog.String("user_id", principal.SubjectID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, user *domain.User) (*auth.Token, bool) {
	token, err := h.tokenService.Issue(r.Context(), h.tokenLifetime, auth.Claims{
		SubjectID: user.ID.String(),
		Purpose:   auth.PurposeSession,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return nil, false
	}
	return token, true
}

// sendWelcome queues the welcome message. Delivery problems never fail
// the registration.
func (h *AuthHandler) sendWelcome(ctx context.Context, user *domain.User) {
	if h.mail == nil {
		return
	}
	if err := h.mail.Enqueue(ctx, notify.WelcomeMessage(user.Email, user.Name)); err != nil {
		logger.FromContext(ctx).Warn("failed to queue welcome mail",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
	}
}

func authResponse(user *domain.User, token *auth.Token) AuthResponse {
	return AuthResponse{
		UserID:    user.ID,
		Token:     token.Raw,
		ExpiresAt: token.Payload.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
