package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SagaState defines the possible states of a transfer saga.
type SagaState string

const (
	STARTED             SagaState = "STARTED"
	DEBIT_PENDING       SagaState = "DEBIT_PENDING"
	DEBIT_CONFIRMED     SagaState = "DEBIT_CONFIRMED"
	DEBIT_FAILED        SagaState = "DEBIT_FAILED"
	CREDIT_PENDING      SagaState = "CREDIT_PENDING"
	CREDIT_FAILED       SagaState = "CREDIT_FAILED"
	COMPENSATING        SagaState = "COMPENSATING"
	COMPENSATED         SagaState = "COMPENSATED"
	COMPENSATION_FAILED SagaState = "COMPENSATION_FAILED"
	SAGA_COMPLETED      SagaState = "COMPLETED"
)

var sagaTransitions = map[SagaState][]SagaState{
	STARTED:         {DEBIT_PENDING},
	DEBIT_PENDING:   {DEBIT_CONFIRMED, DEBIT_FAILED},
	DEBIT_CONFIRMED: {CREDIT_PENDING},
	CREDIT_PENDING:  {SAGA_COMPLETED, CREDIT_FAILED},
	CREDIT_FAILED:   {COMPENSATING},
	COMPENSATING:    {COMPENSATING, COMPENSATED, COMPENSATION_FAILED},
}

// PendingSagaStates lists the states a saga can be resumed from.
var PendingSagaStates = []SagaState{STARTED, DEBIT_PENDING, DEBIT_CONFIRMED, CREDIT_PENDING, CREDIT_FAILED, COMPENSATING}

// Terminal reports whether no further transition is possible.
func (s SagaState) Terminal() bool {
	_, ok := sagaTransitions[s]
	return !ok
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s SagaState) CanTransitionTo(next SagaState) bool {
	for _, allowed := range sagaTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Saga is the durable record of a transfer in flight. Its key is the client's
// idempotency key for the transfer.
type Saga struct {
	Key                  string
	SourceAccountId      string
	DestinationAccountId string
	Amount               decimal.Decimal
	State                SagaState
	ResumeAttempts       int
	CompensationAttempts int
	LastError            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DebitKey is the idempotency key of the debit leg.
func (s *Saga) DebitKey() string { return s.Key + ":debit" }

// CreditKey is the idempotency key of the credit leg.
func (s *Saga) CreditKey() string { return s.Key + ":credit" }

// ReversalKey is the idempotency key of the compensating credit.
func (s *Saga) ReversalKey() string { return s.Key + ":reversal" }
