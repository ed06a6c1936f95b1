package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the append-only movement log of every account. Balances are
// always derived from the full history.
type Ledger struct {
	Store storage.LedgerStore
	Now   func() time.Time
}

// New creates a new Ledger.
func New(store storage.LedgerStore) *Ledger {
	return &Ledger{Store: store, Now: time.Now}
}

// RecordMovement appends a movement and returns its id. The amount is rounded
// to two decimal places. Account existence and status are not checked here.
func (l *Ledger) RecordMovement(ctx context.Context, movement models.Movement) (string, error) {
	if !movement.Amount.IsPositive() {
		return "", models.ErrInvalidAmount
	}
	if !movement.Type.Valid() {
		return "", models.ErrInvalidType
	}

	movement.Amount = movement.Amount.Round(2)
	if !movement.Amount.IsPositive() {
		// 0.004 and friends round down to nothing.
		return "", models.ErrInvalidAmount
	}

	if movement.Id == "" {
		movement.Id = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = l.Now().UTC()
	}

	if err := l.Store.AppendMovement(ctx, &movement); err != nil {
		return "", fmt.Errorf("failed to record movement: %w", err)
	}

	return movement.Id, nil
}

// Balance returns the sum of credits minus the sum of debits of an account.
func (l *Ledger) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	movements, err := l.Store.ListMovements(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list movements: %w", err)
	}

	balance := decimal.Zero
	for _, m := range movements {
		switch m.Type {
		case models.CREDIT:
			balance = balance.Add(m.Amount)
		case models.DEBIT:
			balance = balance.Sub(m.Amount)
		}
	}

	return balance.Round(2), nil
}
