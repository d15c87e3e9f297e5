package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthenticationModel mirrors the 'account_authentications' table. The unique
// index on (provider, subject_id) is the arbiter for concurrent federated
// logins; the application relies on it rather than on advisory locking.
type AuthenticationModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	AccountID    uuid.UUID `gorm:"type:uuid;not null"`
	Provider     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_auth_provider_subject_id"`
	SubjectID    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_auth_provider_subject_id"`
	PasswordHash string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AuthenticationModel) TableName() string {
	return "account_authentications"
}

// SessionModel mirrors the 'sessions' table. Only the SHA-256 hash of the
// client token is stored.
type SessionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(255);unique;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
