package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKeys(t *testing.T) {
	ctx := context.Background()
	store := New()

	existing, err := store.ClaimKey(ctx, &models.IdempotencyRecord{Key: "k", Fingerprint: "fp"})
	require.NoError(t, err)
	assert.Nil(t, existing)

	existing, err = store.ClaimKey(ctx, &models.IdempotencyRecord{Key: "k", Fingerprint: "other"})
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, "fp", existing.Fingerprint)
	assert.Equal(t, models.IN_PROGRESS, existing.Status)

	outcome := "DEBIT_FAILED"
	require.NoError(t, store.CompleteKey(ctx, "k", &outcome))
	assert.NoError(t, store.CompleteKey(ctx, "k", &outcome))
	assert.ErrorIs(t, store.CompleteKey(ctx, "k", nil), storage.ErrOutcomeConflict)
	assert.ErrorIs(t, store.CompleteKey(ctx, "missing", nil), storage.ErrIdempotencyKeyNotFound)

	record, ok := store.IdempotencyRecord("k")
	require.True(t, ok)
	assert.True(t, record.IsComplete())
	assert.Equal(t, outcome, *record.Outcome)
}

func TestSagaTransitions(t *testing.T) {
	ctx := context.Background()
	store := New()
	saga := &models.Saga{Key: "s", Amount: decimal.NewFromInt(1), State: models.STARTED, UpdatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateSaga(ctx, saga))
	assert.ErrorIs(t, store.CreateSaga(ctx, saga), storage.ErrSagaExists)

	saga.State = models.DEBIT_PENDING
	require.NoError(t, store.TransitionSaga(ctx, saga, models.STARTED))
	assert.ErrorIs(t, store.TransitionSaga(ctx, saga, models.STARTED), storage.ErrSagaStateConflict)

	stored, err := store.GetSaga(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, models.DEBIT_PENDING, stored.State)

	_, err = store.GetSaga(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSagaNotFound)
}

func TestListStaleSagas(t *testing.T) {
	ctx := context.Background()
	store := New()
	old := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, store.CreateSaga(ctx, &models.Saga{Key: "stuck", State: models.CREDIT_PENDING, UpdatedAt: old}))
	require.NoError(t, store.CreateSaga(ctx, &models.Saga{Key: "done", State: models.SAGA_COMPLETED, UpdatedAt: old}))
	require.NoError(t, store.CreateSaga(ctx, &models.Saga{Key: "fresh", State: models.DEBIT_PENDING, UpdatedAt: time.Now().UTC()}))

	sagas, err := store.ListStaleSagas(ctx, 5*time.Minute)

	require.NoError(t, err)
	require.Len(t, sagas, 1)
	assert.Equal(t, "stuck", sagas[0].Key)
}

func TestMovementsAndTransfers(t *testing.T) {
	ctx := context.Background()
	store := New()
	movement := &models.Movement{Id: "m", AccountId: "a", Type: models.CREDIT, Amount: decimal.NewFromInt(1)}

	require.NoError(t, store.AppendMovement(ctx, movement))
	assert.ErrorIs(t, store.AppendMovement(ctx, movement), storage.ErrMovementExists)

	transfer := &models.Transfer{Id: "t", Amount: decimal.NewFromInt(1)}
	require.NoError(t, store.CreateTransfer(ctx, transfer))
	assert.ErrorIs(t, store.CreateTransfer(ctx, transfer), storage.ErrTransferExists)
	assert.Equal(t, 1, store.TransferCount())

	_, err := store.GetTransfer(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrTransferNotFound)

	store.PutAccount(models.Account{Id: "a", Number: 7, Active: true})
	account, err := store.GetAccountByNumber(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "a", account.Id)
	_, err = store.GetAccount(ctx, "b")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}
