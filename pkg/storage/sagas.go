package storage

import (
	"context"
	"time"

	"github.com/chris/account-transfers/pkg/models"
)

// SagaStore persists every state transition of a transfer saga so that a
// crashed saga can be resumed from its last committed state.
type SagaStore interface {
	// CreateSaga writes a new saga. It fails with ErrSagaExists when the key is taken.
	CreateSaga(ctx context.Context, saga *models.Saga) error

	// GetSaga retrieves a saga by its key.
	GetSaga(ctx context.Context, key string) (*models.Saga, error)

	// TransitionSaga persists saga's current fields, provided the stored saga is
	// still in state from. It fails with ErrSagaStateConflict otherwise.
	TransitionSaga(ctx context.Context, saga *models.Saga, from models.SagaState) error

	// ListStaleSagas retrieves resumable sagas that have not moved for longer than maxAge.
	ListStaleSagas(ctx context.Context, maxAge time.Duration) ([]models.Saga, error)
}
