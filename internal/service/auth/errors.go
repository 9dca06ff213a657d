package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, forged, signed with an
	// unexpected algorithm, or missing required claims.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrInvalidLifetime is returned by Issue for a non-positive lifetime.
	ErrInvalidLifetime = errors.New("token lifetime must be positive")

	// ErrInvalidClaims is returned by Issue when subject or purpose is missing.
	ErrInvalidClaims = errors.New("token claims require a subject and a purpose")

	// ErrWeakSecret is returned when the signing secret is shorter than MinSecretLength.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")

	// ErrRevocationUnavailable wraps failures talking to the revocation store.
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
)
