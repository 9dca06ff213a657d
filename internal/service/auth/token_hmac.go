package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// hmacTokenService is a TokenService using HMAC-SHA256 signing.
type hmacTokenService struct {
	signingKey []byte
	timeFunc   func() time.Time // Injectable for testing
}

// sessionClaims is the wire form of a Payload.
type sessionClaims struct {
	SubjectID string `json:"id"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// Option customizes a TokenService.
type Option func(*hmacTokenService)

// WithClock replaces time.Now for issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(s *hmacTokenService) {
		s.timeFunc = now
	}
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates an HS256 TokenService. The secret must be at least
// MinSecretLength bytes.
func NewTokenService(secret string, opts ...Option) (TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	s := &hmacTokenService{
		signingKey: []byte(secret),
		timeFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue implements TokenService.
func (s *hmacTokenService) Issue(ctx context.Context, lifetime time.Duration, claims Claims) (*Token, error) {
	if lifetime <= 0 {
		return nil, ErrInvalidLifetime
	}
	if claims.SubjectID == "" || claims.Purpose == "" {
		return nil, ErrInvalidClaims
	}

	now := s.timeFunc()
	wire := sessionClaims{
		SubjectID: claims.SubjectID,
		Purpose:   claims.Purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"purpose", claims.Purpose,
			"signing_method", jwt.SigningMethodHS256.Name)
		return nil, fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return &Token{Raw: signed, Payload: wire.payload()}, nil
}

// Verify implements TokenService.
func (s *hmacTokenService) Verify(ctx context.Context, raw string) (*Payload, error) {
	log := logger.FromContext(ctx)

	token, err := jwt.ParseWithClaims(
		raw,
		&sessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired")
			return nil, ErrExpiredToken
		}
		log.Debug("token validation failed",
			"reason", validationReason(err),
			"error_type", fmt.Sprintf("%T", err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}
	if claims.SubjectID == "" || claims.ID == "" || claims.Purpose == "" {
		log.Debug("token validation failed: missing required claims")
		return nil, ErrInvalidToken
	}

	payload := claims.payload()
	return &payload, nil
}

func (c *sessionClaims) payload() Payload {
	p := Payload{
		SubjectID: c.SubjectID,
		TokenID:   c.ID,
		Purpose:   c.Purpose,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

// validationReason names the jwt failure class for debug logs.
func validationReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing_claim"
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "not_yet_valid"
	default:
		return "other"
	}
}
