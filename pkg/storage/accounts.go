package storage

import (
	"context"

	"github.com/chris/account-transfers/pkg/models"
)

// AccountDirectory is the read-only account lookup oracle. Accounts are owned
// by the registration service; the ledger never writes them.
type AccountDirectory interface {
	// GetAccount retrieves an account by its opaque id.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// GetAccountByNumber retrieves an account by its public number.
	GetAccountByNumber(ctx context.Context, number int64) (*models.Account, error)
}
