// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "whisper/internal/delivery/context"
	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/repository"
	"whisper/internal/domain/service"
	"whisper/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager   repository.TransactionManager
	accountRepo repository.AccountRepository
	authRepo    repository.AuthRepository
	hasher      service.PasswordHasher
	publisher   service.EventPublisher
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	AuthRepo    repository.AuthRepository
	Hasher      service.PasswordHasher
	Publisher   service.EventPublisher
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		authRepo:    params.AuthRepo,
		hasher:      params.Hasher,
		publisher:   params.Publisher,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account with a local password credential.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AccountOutput, error) {
	srv.log(ctx).Info("Starting local registration", slog.String("username", input.Username))

	// bcrypt is CPU-bound; keep it outside the transaction.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	var registeredAccount *entity.Account
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()
		authRepo := repoFactory.AuthRepo()

		_, findErr := authRepo.FindAuthentication(ctx, entity.ProviderLocal, input.Username)
		if findErr == nil {
			return domainerrors.ErrDuplicateUsername.WrapMessage("username already registered")
		}
		if !errors.Is(findErr, repository.ErrAuthNotFound) {
			return errors.Wrap(findErr, "failed to find authentication")
		}

		newAccount := &entity.Account{Username: input.Username}
		if createErr := accountRepo.Create(ctx, newAccount); createErr != nil {
			return errors.Wrap(createErr, "failed to create account during registration")
		}

		newAuth := &entity.Authentication{
			AccountID:    newAccount.ID,
			Provider:     entity.ProviderLocal,
			SubjectID:    input.Username,
			PasswordHash: hashedPassword,
		}
		if createErr := authRepo.CreateAuthentication(ctx, newAuth); createErr != nil {
			// A concurrent registration won the unique index on
			// (provider, subject_id); same outcome as the lookup above.
			if errors.Is(createErr, repository.ErrAuthConflict) {
				return domainerrors.ErrDuplicateUsername.WrapMessage("username already registered")
			}

			return errors.Wrap(createErr, "failed to create authentication during registration")
		}

		registeredAccount = newAccount

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("username", input.Username), slog.Any("error", err))

		return nil, err
	}

	srv.publishEvent(ctx, registeredAccount, entity.ProviderLocal, service.EventAccountCreated)
	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", registeredAccount.ID))

	return &usecase.AccountOutput{Account: registeredAccount}, nil
}

// Login verifies a local credential and resolves its account.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AccountOutput, error) {
	srv.log(ctx).Debug("Starting local login", slog.String("username", input.Username))

	authRecord, err := srv.authRepo.FindAuthentication(ctx, entity.ProviderLocal, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAuthNotFound) {
			srv.log(ctx).Warn("Login failed: unknown user", slog.String("username", input.Username))

			return nil, errors.Wrap(domainerrors.ErrUnknownUser, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find authentication")
	}

	// Check the password outside any transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
		srv.log(ctx).Warn("Login failed: password mismatch", slog.String("username", input.Username))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	account, err := srv.accountRepo.FindByID(ctx, authRecord.AccountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load account for login")
	}

	srv.log(ctx).Debug("Local login succeeded", slog.Any("accountID", account.ID))

	return &usecase.AccountOutput{Account: account}, nil
}

// ResolveFederated finds or creates the account for a verified federated profile.
func (srv *accountService) ResolveFederated(ctx context.Context, profile *service.OAuthProfile) (*usecase.AccountOutput, error) {
	if !profile.Provider.Federated() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "provider is not federated")
	}
	if profile.SubjectID == "" {
		return nil, errors.Wrap(domainerrors.ErrUpstreamAuth, "provider profile missing subject id")
	}

	srv.log(ctx).Debug("Resolving federated identity",
		slog.String("provider", profile.Provider.String()),
		slog.String("subjectID", profile.SubjectID),
	)

	authRecord, err := srv.authRepo.FindAuthentication(ctx, profile.Provider, profile.SubjectID)
	if err == nil {
		return srv.loadResolvedAccount(ctx, authRecord.AccountID)
	}
	if !errors.Is(err, repository.ErrAuthNotFound) {
		return nil, errors.Wrap(err, "failed to find federated authentication")
	}

	account, err := srv.createFederatedAccount(ctx, profile)
	if err == nil {
		srv.publishEvent(ctx, account, profile.Provider, service.EventAccountCreated)

		return &usecase.AccountOutput{Account: account}, nil
	}
	if !errors.Is(err, repository.ErrAuthConflict) {
		return nil, err
	}

	// Lost the first-login race: another request created the pair after our
	// lookup. The unique index guarantees a row exists now, so retry the
	// lookup instead of failing the login.
	srv.log(ctx).Debug("Federated create conflicted, retrying lookup",
		slog.String("provider", profile.Provider.String()),
		slog.String("subjectID", profile.SubjectID),
	)

	authRecord, err = srv.authRepo.FindAuthentication(ctx, profile.Provider, profile.SubjectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find federated authentication after conflict")
	}

	return srv.loadResolvedAccount(ctx, authRecord.AccountID)
}

func (srv *accountService) loadResolvedAccount(ctx context.Context, accountID uuid.UUID) (*usecase.AccountOutput, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load resolved account")
	}

	return &usecase.AccountOutput{Account: account}, nil
}

// createFederatedAccount creates the account and authentication pair inside
// one transaction. Returns repository.ErrAuthConflict when a concurrent
// first login claimed the (provider, subject id) pair first.
func (srv *accountService) createFederatedAccount(ctx context.Context, profile *service.OAuthProfile) (*entity.Account, error) {
	var created *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()
		authRepo := repoFactory.AuthRepo()

		newAccount := &entity.Account{Username: federatedUsername(profile)}
		if err := accountRepo.Create(ctx, newAccount); err != nil {
			return errors.Wrap(err, "failed to create account for federated login")
		}

		newAuth := &entity.Authentication{
			AccountID: newAccount.ID,
			Provider:  profile.Provider,
			SubjectID: profile.SubjectID,
		}
		if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
			// Propagate the sentinel unwrapped so the caller can retry.
			return err
		}

		created = newAccount

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Created account for first federated login",
		slog.Any("accountID", created.ID),
		slog.String("provider", profile.Provider.String()),
	)

	return created, nil
}

// federatedUsername picks the display handle for a first federated login.
func federatedUsername(profile *service.OAuthProfile) string {
	if profile.Name != "" {
		return profile.Name
	}
	if profile.Email != "" {
		return profile.Email
	}

	return profile.Provider.String() + ":" + profile.SubjectID
}

// publishEvent publishes an account lifecycle event. Publishing is
// best-effort; failures are logged and never fail the auth flow.
func (srv *accountService) publishEvent(ctx context.Context, account *entity.Account, provider entity.Provider, kind string) {
	event := &service.AccountEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		AccountID: account.ID.String(),
		Provider:  provider.String(),
		Kind:      kind,
	}

	if err := srv.publisher.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("kind", kind),
			slog.Any("accountID", account.ID),
			slog.Any("error", err),
		)
	}
}
