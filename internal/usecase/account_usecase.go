// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"whisper/internal/domain/entity"
	"whisper/internal/domain/service"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a local account.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput defines the data required for a local login.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// AccountOutput returns the resolved account.
type AccountOutput struct {
	Account *entity.Account
}

// AccountUsecase defines the account resolution operations. Every
// credential path, local or federated, terminates here with exactly one
// account.
type AccountUsecase interface {
	// Register creates a new account with a local password credential.
	// Returns ErrDuplicateUsername when the handle is already claimed.
	Register(ctx context.Context, input *RegisterInput) (*AccountOutput, error)

	// Login verifies a local credential. Returns ErrUnknownUser when no
	// local authentication exists for the handle and ErrInvalidCredentials
	// on a hash mismatch. Callers must present both identically.
	Login(ctx context.Context, input *LoginInput) (*AccountOutput, error)

	// ResolveFederated finds or creates the account for a verified
	// federated profile. Concurrent first logins for the same subject
	// converge on a single account.
	ResolveFederated(ctx context.Context, profile *service.OAuthProfile) (*AccountOutput, error)
}
