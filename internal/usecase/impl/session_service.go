package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "whisper/internal/delivery/context"
	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/repository"
	"whisper/internal/domain/service"
	"whisper/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	sessionRepo  repository.SessionRepository
	accountRepo  repository.AccountRepository
	tokenService service.SessionTokenService
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	SessionRepo  repository.SessionRepository
	AccountRepo  repository.AccountRepository
	TokenService service.SessionTokenService
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		sessionRepo:  params.SessionRepo,
		accountRepo:  params.AccountRepo,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		logger:       params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Bind establishes a session for an authenticated account.
func (srv *sessionService) Bind(ctx context.Context, input *usecase.BindInput) (*usecase.BindOutput, error) {
	token, err := srv.tokenService.GenerateToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session token")
	}

	expiresAt := time.Now().Add(srv.tokenService.SessionDuration())
	session := &entity.Session{
		AccountID: input.AccountID,
		TokenHash: srv.tokenService.HashToken(token),
		ExpiresAt: expiresAt,
	}

	if err := srv.sessionRepo.CreateSession(ctx, session); err != nil {
		srv.log(ctx).Error("Failed to create session", slog.Any("accountID", input.AccountID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create session")
	}

	srv.publishEvent(ctx, input.AccountID.String(), input.Provider.String(), service.EventAccountLogin)
	srv.log(ctx).Debug("Session bound", slog.Any("accountID", input.AccountID))

	return &usecase.BindOutput{Token: token, ExpiresAt: expiresAt}, nil
}

// Restore resolves a raw token back to its account. Every failure mode is
// ErrUnauthenticated; a missing session is a negative result, not a fault.
func (srv *sessionService) Restore(ctx context.Context, token string) (*entity.Account, error) {
	if token == "" {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "no session token")
	}

	// Signature and expiry check rejects forged tokens before touching
	// storage; the session row remains the source of truth.
	if err := srv.tokenService.ValidateToken(token); err != nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "invalid session token")
	}

	session, err := srv.sessionRepo.FindSessionByHash(ctx, srv.tokenService.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "session not found")
		}

		return nil, errors.Wrap(err, "failed to find session")
	}

	if session.Expired(time.Now()) {
		return nil, errors.Wrap(domainerrors.ErrSessionExpired, "session expired")
	}

	// Fresh read so writes since the bind (a newly submitted secret) are
	// visible on the restored account.
	account, err := srv.accountRepo.FindByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load session account")
	}

	return account, nil
}

// Unbind destroys the session for a raw token. Idempotent.
func (srv *sessionService) Unbind(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := srv.tokenService.HashToken(token)

	// Look the session up first so the logout event can name the account.
	// An unknown token still unbinds successfully.
	session, err := srv.sessionRepo.FindSessionByHash(ctx, tokenHash)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return errors.Wrap(err, "failed to find session for unbind")
	}

	if err := srv.sessionRepo.DeleteSessionByHash(ctx, tokenHash); err != nil {
		srv.log(ctx).Error("Failed to delete session", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete session")
	}

	if session != nil {
		srv.publishEvent(ctx, session.AccountID.String(), "", service.EventAccountLogout)
		srv.log(ctx).Debug("Session unbound", slog.Any("accountID", session.AccountID))
	}

	return nil
}

func (srv *sessionService) publishEvent(ctx context.Context, accountID, provider, kind string) {
	event := &service.AccountEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		AccountID: accountID,
		Provider:  provider,
		Kind:      kind,
	}

	if err := srv.publisher.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("kind", kind),
			slog.String("accountID", accountID),
			slog.Any("error", err),
		)
	}
}
