package storage

import (
	"context"

	"github.com/chris/account-transfers/pkg/models"
)

// TransferStore persists committed transfers.
type TransferStore interface {
	// CreateTransfer writes the transfer record. It fails with ErrTransferExists
	// when the id is already taken.
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error

	// GetTransfer retrieves a transfer by its id.
	GetTransfer(ctx context.Context, transferID string) (*models.Transfer, error)
}
