package impl

import (
	"context"
	"log/slog"

	deliverycontext "whisper/internal/delivery/context"
	"whisper/internal/domain/repository"
	"whisper/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// secretService implements the SecretUsecase interface.
type secretService struct {
	accountRepo repository.AccountRepository
	logger      *slog.Logger
}

// SecretServiceParams holds dependencies for secretService, injected by Fx.
type SecretServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	Logger      *slog.Logger
}

// NewSecretService is the constructor for secretService.
func NewSecretService(params SecretServiceParams) usecase.SecretUsecase {
	return &secretService{
		accountRepo: params.AccountRepo,
		logger:      params.Logger,
	}
}

func (srv *secretService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit stores or replaces the account's secret.
func (srv *secretService) Submit(ctx context.Context, accountID uuid.UUID, secret string) error {
	if err := srv.accountRepo.UpdateSecret(ctx, accountID, secret); err != nil {
		srv.log(ctx).Error("Failed to store secret", slog.Any("accountID", accountID), slog.Any("error", err))

		return errors.Wrap(err, "failed to store secret")
	}

	srv.log(ctx).Debug("Secret stored", slog.Any("accountID", accountID))

	return nil
}

// ListShared returns every account's shared secret.
func (srv *secretService) ListShared(ctx context.Context) ([]*usecase.SharedSecret, error) {
	accounts, err := srv.accountRepo.FindWithSecrets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list shared secrets")
	}

	secrets := make([]*usecase.SharedSecret, 0, len(accounts))
	for _, account := range accounts {
		if !account.HasSecret() {
			continue
		}
		secrets = append(secrets, &usecase.SharedSecret{
			Username: account.Username,
			Secret:   *account.Secret,
		})
	}

	return secrets, nil
}
