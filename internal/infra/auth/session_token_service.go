// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"whisper/config"
	"whisper/internal/domain/service"
)

// sessionTokenService mints session tokens as signed JWTs. The client
// treats the token as opaque; the server stores only its SHA-256 hash and
// authenticates by looking that hash up, so the signature is a cheap
// first-pass filter, not the authority.
type sessionTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokenService is the constructor for sessionTokenService.
// It refuses to start without a signing secret; the secret is configuration,
// never a source literal.
func NewSessionTokenService(cfg *config.Config) (service.SessionTokenService, error) {
	if cfg.Session == nil || cfg.Session.Secret == "" {
		return nil, errors.New("session secret must be provided")
	}

	return &sessionTokenService{
		secret: []byte(cfg.Session.Secret),
		ttl:    cfg.Session.TTL,
	}, nil
}

// GenerateToken creates a new raw session token with a unique jti claim.
func (s *sessionTokenService) GenerateToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// ValidateToken checks the signature and expiry of a raw token string.
func (s *sessionTokenService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil {
		return errors.Wrap(err, "invalid session token")
	}
	if !token.Valid {
		return errors.New("invalid session token")
	}

	return nil
}

// HashToken returns the SHA-256 hex digest stored in place of the raw token.
func (s *sessionTokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// SessionDuration returns the configured session lifetime.
func (s *sessionTokenService) SessionDuration() time.Duration {
	return s.ttl
}
