package impl

import (
	"context"
	"log/slog"
	"testing"

	"whisper/internal/domain/entity"
	"whisper/internal/domain/repository"
	"whisper/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecretFixture() (usecase.SecretUsecase, *fakeAccountRepo) {
	accounts := newFakeAccountRepo()
	svc := NewSecretService(SecretServiceParams{
		AccountRepo: accounts,
		Logger:      slog.Default(),
	})

	return svc, accounts
}

func TestSubmitThenListShared(t *testing.T) {
	t.Parallel()

	svc, accounts := newSecretFixture()
	ctx := context.Background()

	alice := &entity.Account{Username: "alice"}
	require.NoError(t, accounts.Create(ctx, alice))
	bob := &entity.Account{Username: "bob"}
	require.NoError(t, accounts.Create(ctx, bob))

	require.NoError(t, svc.Submit(ctx, alice.ID, "alice's secret"))

	shared, err := svc.ListShared(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1, "accounts without a secret are not listed")
	assert.Equal(t, "alice", shared[0].Username)
	assert.Equal(t, "alice's secret", shared[0].Secret)
}

func TestSubmitReplacesSecret(t *testing.T) {
	t.Parallel()

	svc, accounts := newSecretFixture()
	ctx := context.Background()

	alice := &entity.Account{Username: "alice"}
	require.NoError(t, accounts.Create(ctx, alice))

	require.NoError(t, svc.Submit(ctx, alice.ID, "first"))
	require.NoError(t, svc.Submit(ctx, alice.ID, "second"))

	shared, err := svc.ListShared(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "second", shared[0].Secret)
}

func TestSubmitUnknownAccount(t *testing.T) {
	t.Parallel()

	svc, accounts := newSecretFixture()
	ctx := context.Background()

	err := svc.Submit(ctx, uuid.New(), "orphan secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	shared, err := svc.ListShared(ctx)
	require.NoError(t, err)
	assert.Empty(t, shared)
	assert.Equal(t, 0, accounts.count())
}

func TestListSharedOrderIsStable(t *testing.T) {
	t.Parallel()

	svc, accounts := newSecretFixture()
	ctx := context.Background()

	names := []string{"alice", "bob", "carol"}
	for _, name := range names {
		account := &entity.Account{Username: name}
		require.NoError(t, accounts.Create(ctx, account))
		require.NoError(t, svc.Submit(ctx, account.ID, name+" secret"))
	}

	shared, err := svc.ListShared(ctx)
	require.NoError(t, err)
	require.Len(t, shared, len(names))
	for i, name := range names {
		assert.Equal(t, name, shared[i].Username)
	}
}
