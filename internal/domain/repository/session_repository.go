// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"whisper/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session record is not found.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the interface for server-side session records.
// The record keyed by token hash is the source of truth for an authenticated
// client; losing the record is equivalent to logging the client out.
type SessionRepository interface {
	// CreateSession persists a new session record.
	CreateSession(ctx context.Context, session *entity.Session) error

	// FindSessionByHash retrieves a session record by the SHA-256 hash of its raw token.
	FindSessionByHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	// DeleteSessionByHash deletes a session by its token hash. Deleting an
	// absent session is not an error; unbinding is idempotent.
	DeleteSessionByHash(ctx context.Context, tokenHash string) error

	// DeleteSessionsByAccountID removes every session bound to an account.
	DeleteSessionsByAccountID(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpiredSessions removes all expired session records.
	// Called periodically for cleanup.
	DeleteExpiredSessions(ctx context.Context) error
}
