// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the unit of identity in the system. Every credential path
// (local password, Google, Facebook) resolves to exactly one Account.
type Account struct {
	ID        uuid.UUID // Store-assigned unique identifier; immutable after creation.
	Username  string    // Display handle. For locally registered accounts this equals the login handle.
	Secret    *string   // The account's submitted secret. Nil until the owner submits one.
	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}

// HasSecret reports whether the account has submitted a secret.
func (a *Account) HasSecret() bool {
	return a.Secret != nil && *a.Secret != ""
}
