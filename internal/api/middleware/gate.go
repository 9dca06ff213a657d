package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Client-facing messages for rejected requests.
const (
	MsgNoToken           = "No token provided"
	MsgInvalidToken      = "Invalid bearer token"
	MsgInsufficientRoles = "Insufficient permissions"
)

// Decision is the outcome of one authorization check.
type Decision int

const (
	DecisionNoToken Decision = iota
	DecisionTokenInvalid
	DecisionRevoked
	DecisionUserNotFound
	DecisionInsufficientRole
	DecisionDependencyUnavailable
	DecisionAuthorized
)

var decisionNames = map[Decision]string{
	DecisionNoToken:               "no_token",
	DecisionTokenInvalid:          "token_invalid",
	DecisionRevoked:               "revoked",
	DecisionUserNotFound:          "user_not_found",
	DecisionInsufficientRole:      "insufficient_role",
	DecisionDependencyUnavailable: "dependency_unavailable",
	DecisionAuthorized:            "authorized",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Status returns the HTTP status a rejected request receives. Dependency
// failures fail closed as 401.
func (d Decision) Status() int {
	switch d {
	case DecisionAuthorized:
		return http.StatusOK
	case DecisionInsufficientRole:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// Message returns the client-facing error message for d.
func (d Decision) Message() string {
	switch d {
	case DecisionAuthorized:
		return ""
	case DecisionNoToken:
		return MsgNoToken
	case DecisionInsufficientRole:
		return MsgInsufficientRoles
	default:
		return MsgInvalidToken
	}
}

// UserLookup resolves the subject of a verified token. It must return
// store.ErrUserNotFound when the user does not exist.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// DecisionRecorder counts gate outcomes.
type DecisionRecorder interface {
	AuthDecision(decision string)
}

// Gate composes token verification, the revocation check, the user lookup
// and the role policy into a per-route guard.
type Gate struct {
	tokens      auth.TokenService
	revocations auth.RevocationStore
	users       UserLookup
	recorder    DecisionRecorder
}

// NewGate creates a Gate. recorder may be nil.
func NewGate(
	tokens auth.TokenService,
	revocations auth.RevocationStore,
	users UserLookup,
	recorder DecisionRecorder,
) *Gate {
	return &Gate{
		tokens:      tokens,
		revocations: revocations,
		users:       users,
		recorder:    recorder,
	}
}

// Authorize runs the checks in order and stops at the first failure. The
// returned error carries the underlying cause for logging; it is nil for
// DecisionAuthorized, DecisionNoToken and DecisionInsufficientRole.
func (g *Gate) Authorize(
	ctx context.Context,
	authorization string,
	minimum domain.Role,
) (*shared.Principal, Decision, error) {
	decision := DecisionAuthorized
	defer func() {
		if g.recorder != nil {
			g.recorder.AuthDecision(decision.String())
		}
	}()

	raw, ok := bearerToken(authorization)
	if !ok {
		decision = DecisionNoToken
		return nil, decision, nil
	}

	payload, err := g.tokens.Verify(ctx, raw)
	if err != nil {
		decision = DecisionTokenInvalid
		return nil, decision, err
	}
	if payload.Purpose != auth.PurposeSession {
		decision = DecisionTokenInvalid
		return nil, decision, fmt.Errorf("%w: purpose %q", auth.ErrInvalidToken, payload.Purpose)
	}
	subjectID, err := uuid.Parse(payload.SubjectID)
	if err != nil {
		decision = DecisionTokenInvalid
		return nil, decision, fmt.Errorf("%w: subject is not a uuid", auth.ErrInvalidToken)
	}

	revoked, err := g.revocations.IsRevoked(ctx, payload.TokenID)
	if err != nil {
		decision = DecisionDependencyUnavailable
		return nil, decision, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		decision = DecisionRevoked
		return nil, decision, errors.New("token has been revoked")
	}

	user, err := g.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			decision = DecisionUserNotFound
			return nil, decision, err
		}
		decision = DecisionDependencyUnavailable
		return nil, decision, fmt.Errorf("user lookup: %w", err)
	}

	if !auth.Permits(minimum, user.Role) {
		decision = DecisionInsufficientRole
		return nil, decision, nil
	}

	return &shared.Principal{
		SubjectID:   user.ID,
		Role:        user.Role,
		TokenID:     payload.TokenID,
		TokenExpiry: payload.ExpiresAt,
	}, decision, nil
}

// Guard returns middleware admitting only principals holding at least
// minimum. The Principal is attached to the request context for handlers.
func (g *Gate) Guard(minimum domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, decision, err := g.Authorize(r.Context(), r.Header.Get("Authorization"), minimum)
			if decision == DecisionAuthorized {
				ctx := shared.WithPrincipal(r.Context(), principal)
				ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(
					slog.String("user_id", principal.SubjectID.String())))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			log := logger.FromContext(r.Context())
			switch decision {
			case DecisionDependencyUnavailable:
				log.Error("authorization dependency unavailable",
					slog.String("decision", decision.String()),
					slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, decision.Status(), decision.Message())
			case DecisionRevoked:
				shared.RespondWithErrorAndLog(w, r, decision.Status(), decision.Message(), err,
					shared.WithElevatedLogLevel())
			case DecisionInsufficientRole:
				log.Debug("insufficient role",
					slog.String("required_role", minimum.String()))
				shared.RespondWithError(w, r, decision.Status(), decision.Message())
			default:
				shared.RespondWithErrorAndLog(w, r, decision.Status(), decision.Message(), err)
			}
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
