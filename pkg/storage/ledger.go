package storage

import (
	"context"

	"github.com/chris/account-transfers/pkg/models"
)

// LedgerStore is the append-only movement log.
type LedgerStore interface {
	// AppendMovement persists a movement. It fails with ErrMovementExists when
	// the movement id is already taken.
	AppendMovement(ctx context.Context, movement *models.Movement) error

	// ListMovements retrieves the full movement history of an account.
	ListMovements(ctx context.Context, accountID string) ([]models.Movement, error)
}
