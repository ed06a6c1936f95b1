package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSagaStates(t *testing.T) {
	for _, state := range []SagaState{SAGA_COMPLETED, DEBIT_FAILED, COMPENSATED, COMPENSATION_FAILED} {
		assert.True(t, state.Terminal(), state)
	}
	for _, state := range PendingSagaStates {
		assert.False(t, state.Terminal(), state)
	}

	assert.True(t, STARTED.CanTransitionTo(DEBIT_PENDING))
	assert.True(t, CREDIT_PENDING.CanTransitionTo(SAGA_COMPLETED))
	assert.True(t, COMPENSATING.CanTransitionTo(COMPENSATING))
	assert.False(t, STARTED.CanTransitionTo(CREDIT_PENDING))
	assert.False(t, DEBIT_FAILED.CanTransitionTo(COMPENSATING))
	assert.False(t, SAGA_COMPLETED.CanTransitionTo(CREDIT_FAILED))
}

func TestLegKeys(t *testing.T) {
	saga := &Saga{Key: "t-1"}
	keys := []string{saga.DebitKey(), saga.CreditKey(), saga.ReversalKey()}
	assert.Equal(t, []string{"t-1:debit", "t-1:credit", "t-1:reversal"}, keys)
}

func TestErrors(t *testing.T) {
	kind, ok := KindOf(ErrDebitFailed)
	assert.True(t, ok)
	assert.Equal(t, KindDebitFailed, kind)

	assert.Same(t, ErrCreditFailed, ErrorForKind(KindCreditFailed))
	assert.Equal(t, ErrorKind("SOMETHING_NEW"), ErrorForKind("SOMETHING_NEW").(*Error).Kind)
	assert.False(t, IsRejection(nil))
}
