package impl

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/service"
	"whisper/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	svc       usecase.SessionUsecase
	accounts  *fakeAccountRepo
	sessions  *fakeSessionRepo
	tokens    *fakeTokenService
	publisher *fakePublisher
}

func newSessionFixture() *sessionFixture {
	accounts := newFakeAccountRepo()
	sessions := newFakeSessionRepo()
	tokens := newFakeTokenService()
	publisher := &fakePublisher{}

	svc := NewSessionService(SessionServiceParams{
		SessionRepo:  sessions,
		AccountRepo:  accounts,
		TokenService: tokens,
		Publisher:    publisher,
		Logger:       slog.Default(),
	})

	return &sessionFixture{svc: svc, accounts: accounts, sessions: sessions, tokens: tokens, publisher: publisher}
}

func (f *sessionFixture) createAccount(t *testing.T, username string) *entity.Account {
	t.Helper()
	account := &entity.Account{Username: username}
	require.NoError(t, f.accounts.Create(context.Background(), account))

	return account
}

func TestBindThenRestore(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)
	require.NotEmpty(t, bound.Token)

	restored, err := fx.svc.Restore(ctx, bound.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, restored.ID)

	assert.Equal(t, []string{service.EventAccountLogin}, fx.publisher.kinds())
}

func TestRestoreSeesLaterWrites(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)

	// A secret submitted after the bind must be visible on the next restore.
	require.NoError(t, fx.accounts.UpdateSecret(ctx, account.ID, "my secret"))

	restored, err := fx.svc.Restore(ctx, bound.Token)
	require.NoError(t, err)
	require.True(t, restored.HasSecret())
	assert.Equal(t, "my secret", *restored.Secret)
}

func TestRestoreUnknownToken(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()

	_, err := fx.svc.Restore(context.Background(), "never-issued")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestRestoreEmptyToken(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()

	_, err := fx.svc.Restore(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestRestoreForgedToken(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	fx.tokens.validateErr = errors.New("signature is invalid")

	_, err := fx.svc.Restore(context.Background(), "forged-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestRestoreExpiredSession(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	fx.tokens.duration = -time.Minute

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)

	_, err = fx.svc.Restore(ctx, bound.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)
}

func TestRestoreAfterAccountRemoved(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)

	fx.accounts.mu.Lock()
	delete(fx.accounts.accounts, account.ID)
	fx.accounts.mu.Unlock()

	_, err = fx.svc.Restore(ctx, bound.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestUnbindThenRestore(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Unbind(ctx, bound.Token))

	_, err = fx.svc.Restore(ctx, bound.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	assert.Equal(t, []string{service.EventAccountLogin, service.EventAccountLogout}, fx.publisher.kinds())
}

func TestUnbindIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Unbind(ctx, bound.Token))
	require.NoError(t, fx.svc.Unbind(ctx, bound.Token))
	require.NoError(t, fx.svc.Unbind(ctx, "never-issued"))
	assert.Equal(t, 0, fx.sessions.count())
}

func TestBindStoresOnlyHashes(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture()
	ctx := context.Background()
	account := fx.createAccount(t, "alice")

	bound, err := fx.svc.Bind(ctx, &usecase.BindInput{AccountID: account.ID, Provider: entity.ProviderLocal})
	require.NoError(t, err)

	fx.sessions.mu.RLock()
	defer fx.sessions.mu.RUnlock()
	for hash := range fx.sessions.sessions {
		assert.NotEqual(t, bound.Token, hash, "raw token must never be stored")
	}
}
