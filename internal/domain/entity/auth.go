// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Authentication represents a single method of logging in (a credential).
// A local username/password is one record, a linked Google identity is
// another. An account holds at least one and at most one per provider.
type Authentication struct {
	ID           uuid.UUID // The unique ID for this specific authentication record itself.
	AccountID    uuid.UUID // Links this authentication method to the Account it belongs to.
	Provider     Provider  // Which credential path produced this record.
	SubjectID    string    // The stable subject identifier the provider assigned. For the local provider, the username handle.
	PasswordHash string    // bcrypt hash of the password; populated only when Provider is ProviderLocal.
	CreatedAt    time.Time // Timestamp of when this authentication method was linked to the account.
}

// Session represents one authenticated client. The client holds the raw
// token; the store holds only its SHA-256 hash. A session references the
// account by id and never carries credential material.
type Session struct {
	ID        uuid.UUID // The unique ID for this session record.
	AccountID uuid.UUID // The account this session is bound to.
	TokenHash string    // SHA-256 hash of the raw session token.
	ExpiresAt time.Time // When this session stops being restorable.
	CreatedAt time.Time // When the session was established.
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
