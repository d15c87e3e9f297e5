package usecase

import (
	"context"

	"github.com/google/uuid"
)

// SharedSecret is one entry on the shared secrets listing. Only the
// owner's handle and the secret text are exposed.
type SharedSecret struct {
	Username string
	Secret   string
}

// SecretUsecase covers the one piece of application data the service
// guards: each account's single submitted secret.
type SecretUsecase interface {
	// Submit stores or replaces the account's secret. Last write wins.
	Submit(ctx context.Context, accountID uuid.UUID, secret string) error

	// ListShared returns every account's shared secret, oldest account first.
	ListShared(ctx context.Context) ([]*SharedSecret, error)
}
