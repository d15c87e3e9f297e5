package usecase

import (
	"context"
	"time"

	"whisper/internal/domain/entity"

	"github.com/google/uuid"
)

// BindInput defines the data required to bind a session to an account.
type BindInput struct {
	AccountID uuid.UUID
	// Provider is the credential path that authenticated this bind,
	// recorded on the published login event.
	Provider entity.Provider
}

// BindOutput returns the raw session token handed to the client.
type BindOutput struct {
	Token     string
	ExpiresAt time.Time
}

// SessionUsecase manages the lifetime of authenticated sessions. The raw
// token only ever travels between here and the delivery layer's cookie
// handling; storage sees hashes.
type SessionUsecase interface {
	// Bind establishes a session for an authenticated account and returns
	// the raw token for cookie transport.
	Bind(ctx context.Context, input *BindInput) (*BindOutput, error)

	// Restore resolves a raw token back to its account with a fresh read.
	// Returns ErrUnauthenticated for forged, expired, or unbound tokens.
	Restore(ctx context.Context, token string) (*entity.Account, error)

	// Unbind destroys the session for a raw token. Unbinding an unknown
	// token succeeds; logout is idempotent.
	Unbind(ctx context.Context, token string) error
}
