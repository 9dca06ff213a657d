package shared

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// ContextKey is the type of the context keys defined by this package.
type ContextKey string

const (
	requestContextKey ContextKey = "requestContext"
	principalKey      ContextKey = "principal"
)

// RequestContext is the metadata recorded when a request begins. It is
// immutable once attached to a context.
type RequestContext struct {
	RequestID string
	Method    string
	URL       string
	StartTime time.Time
	ClientIP  string
}

// Principal is the authenticated caller, built once by the authorization
// gate after every check has passed.
type Principal struct {
	SubjectID   uuid.UUID
	Role        domain.Role
	TokenID     string
	TokenExpiry time.Time
}

// WithRequestContext returns a copy of ctx carrying rc.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestContextFrom returns the RequestContext attached to ctx.
func RequestContextFrom(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(*RequestContext)
	return rc, ok && rc != nil
}

// GetRequestID returns the request id attached to ctx, or "".
func GetRequestID(ctx context.Context) string {
	if rc, ok := RequestContextFrom(ctx); ok {
		return rc.RequestID
	}
	return ""
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the Principal attached to ctx. Handlers behind the
// gate can rely on it being present.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// NewRequestID returns a random UUID. If the random source fails it falls
// back to a time-based UUID, and past that to the clock reading in hex.
func NewRequestID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	slog.Error("failed to generate random request ID",
		"error", err,
		"fallback", "time-based uuid")

	id, err = uuid.NewUUID()
	if err == nil {
		return id.String()
	}
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
