package auth

import (
	"context"
	"time"
)

// PurposeSession marks tokens that authenticate API requests.
const PurposeSession = "session"

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

// Claims are the caller-supplied parts of a token payload.
type Claims struct {
	SubjectID string
	Purpose   string
}

// Payload is the decoded content of a verified token.
type Payload struct {
	SubjectID string
	TokenID   string
	Purpose   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is a freshly issued token and the payload it encodes.
type Token struct {
	Raw     string
	Payload Payload
}

// TokenService issues and verifies signed, time-bound tokens.
type TokenService interface {
	// Issue signs claims plus a fresh token id, valid for lifetime.
	Issue(ctx context.Context, lifetime time.Duration, claims Claims) (*Token, error)

	// Verify checks signature and expiry and returns the decoded payload.
	// It returns ErrInvalidToken or ErrExpiredToken and never performs I/O.
	Verify(ctx context.Context, raw string) (*Payload, error)
}
