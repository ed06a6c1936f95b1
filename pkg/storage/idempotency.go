package storage

import (
	"context"

	"github.com/chris/account-transfers/pkg/models"
)

// IdempotencyStore persists idempotency records.
type IdempotencyStore interface {
	// ClaimKey inserts the record if no record exists for its key. When the key
	// is already taken it returns the stored record and a nil error; a nil
	// record means the caller won the claim.
	ClaimKey(ctx context.Context, record *models.IdempotencyRecord) (*models.IdempotencyRecord, error)

	// CompleteKey marks a claimed key as completed with the given outcome.
	CompleteKey(ctx context.Context, key string, outcome *string) error
}
