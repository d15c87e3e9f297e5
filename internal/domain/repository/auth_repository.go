// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"whisper/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for authentication persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrAuthNotFound is returned when an authentication method is not found.
	ErrAuthNotFound = errors.New("authentication method not found")
	// ErrAuthConflict is returned when creating an authentication method loses a
	// uniqueness race on (provider, subject id). The caller recovers by retrying
	// the lookup.
	ErrAuthConflict = errors.New("authentication method already exists")
)

// AuthRepository defines the standard operations for authentication-related persistence.
type AuthRepository interface {
	// CreateAuthentication persists a new authentication method (local password or social login).
	// Returns ErrAuthConflict when the (provider, subject id) pair is already claimed.
	CreateAuthentication(ctx context.Context, auth *entity.Authentication) error

	// FindAuthentication retrieves an authentication method by its provider and provider-specific subject ID.
	FindAuthentication(ctx context.Context, provider entity.Provider, subjectID string) (*entity.Authentication, error)

	// ListAuthenticationsByAccountID returns all authentication methods linked to an account.
	ListAuthenticationsByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.Authentication, error)
}
