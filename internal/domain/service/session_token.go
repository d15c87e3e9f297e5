package service

import "time"

// SessionTokenService mints and validates the opaque tokens handed to
// clients. The token is signed so a forged token fails fast, but the
// server-side session record keyed by HashToken is the source of truth;
// a valid signature alone never authenticates a request.
type SessionTokenService interface {
	// GenerateToken creates a new raw session token.
	GenerateToken() (string, error)

	// ValidateToken checks the signature and expiry of a raw token.
	ValidateToken(tokenString string) error

	// HashToken returns the SHA-256 hex digest stored in place of the raw token.
	HashToken(token string) string

	// SessionDuration returns the configured session lifetime.
	SessionDuration() time.Duration
}
