package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType defines the direction of a movement.
type MovementType string

const (
	CREDIT MovementType = "C"
	DEBIT  MovementType = "D"
)

// Valid reports whether the type is one of the supported movement directions.
func (t MovementType) Valid() bool {
	return t == CREDIT || t == DEBIT
}

// IdempotencyStatus defines the possible states of an idempotency record.
type IdempotencyStatus string

const (
	IN_PROGRESS IdempotencyStatus = "IN_PROGRESS"
	COMPLETED   IdempotencyStatus = "COMPLETED"
)

// Account is the read-only view of an account owned by the account directory.
type Account struct {
	Id     string `json:"id" dynamodbav:"account_id"`
	Number int64  `json:"number" dynamodbav:"number"`
	Name   string `json:"name" dynamodbav:"name"`
	Active bool   `json:"active" dynamodbav:"active"`
}

// Movement is a single signed event against one account. Movements are never
// mutated or deleted.
type Movement struct {
	Id        string
	AccountId string
	Type      MovementType
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// IdempotencyRecord tracks a client-supplied key and the outcome of the
// operation it guards. Outcome is nil until completion, and stays nil for
// operations that succeeded.
type IdempotencyRecord struct {
	Key         string            `dynamodbav:"idempotency_key"`
	Fingerprint string            `dynamodbav:"fingerprint"`
	Status      IdempotencyStatus `dynamodbav:"status"`
	Outcome     *string           `dynamodbav:"outcome,omitempty"`
	CreatedAt   time.Time         `dynamodbav:"created_at"`
	CompletedAt *time.Time        `dynamodbav:"completed_at,omitempty"`
	TTL         int64             `dynamodbav:"ttl,omitempty"`
}

// IsComplete reports whether the guarded operation has finished.
func (r *IdempotencyRecord) IsComplete() bool {
	return r.Status == COMPLETED
}

// Transfer is the proof of a committed transfer. It is only written once both
// legs of a saga are durable.
type Transfer struct {
	Id                   string
	SourceAccountId      string
	DestinationAccountId string
	Amount               decimal.Decimal
	CreatedAt            time.Time
}
