package transfers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chris/account-transfers/pkg/idempotency"
	"github.com/chris/account-transfers/pkg/ledger"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/movements"
	"github.com/chris/account-transfers/pkg/notify"
	notifymocks "github.com/chris/account-transfers/pkg/notify/mocks"
	schedmocks "github.com/chris/account-transfers/pkg/scheduler/mocks"
	"github.com/chris/account-transfers/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errConnectionReset = errors.New("connection reset by peer")

// scriptedExecutor fails legs by idempotency key before handing them to the
// real movement service.
type scriptedExecutor struct {
	mu    sync.Mutex
	next  Executor
	errs  map[string][]error
	calls []movements.Request
}

func (e *scriptedExecutor) failNext(key string, errs ...error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[key] = append(e.errs[key], errs...)
}

func (e *scriptedExecutor) Execute(ctx context.Context, req movements.Request) error {
	e.mu.Lock()
	e.calls = append(e.calls, req)
	if queued := e.errs[req.IdempotencyKey]; len(queued) > 0 {
		e.errs[req.IdempotencyKey] = queued[1:]
		e.mu.Unlock()
		return queued[0]
	}
	e.mu.Unlock()
	return e.next.Execute(ctx, req)
}

type fixture struct {
	store     *memory.Store
	movements *movements.Service
	legs      *scriptedExecutor
	scheduler *schedmocks.Scheduler
	publisher *notifymocks.Publisher
	orch      *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.PutAccount(models.Account{Id: "acc-x", Number: 1001, Name: "X", Active: true})
	store.PutAccount(models.Account{Id: "acc-y", Number: 2002, Name: "Y", Active: true})
	store.PutAccount(models.Account{Id: "acc-z", Number: 3003, Name: "Z", Active: false})

	guard := idempotency.NewGuard(store)
	svc := movements.NewService(store, guard, ledger.New(store))
	legs := &scriptedExecutor{next: &LocalExecutor{Movements: svc}, errs: make(map[string][]error)}
	sched := new(schedmocks.Scheduler)
	pub := new(notifymocks.Publisher)

	orch := NewOrchestrator(store, guard, store, store, legs, sched, pub, Config{
		MaxCompensationAttempts: 3,
		MaxResumeAttempts:       3,
		ResumeDelay:             30 * time.Second,
	})

	f := &fixture{store: store, movements: svc, legs: legs, scheduler: sched, publisher: pub, orch: orch}
	f.fund(t, "acc-x", "70")
	return f
}

func (f *fixture) fund(t *testing.T, accountID, amount string) {
	t.Helper()
	require.NoError(t, f.movements.Execute(context.Background(), movements.Request{
		Requestor:      accountID,
		Amount:         decimal.RequireFromString(amount),
		Type:           models.CREDIT,
		IdempotencyKey: "fund-" + accountID + "-" + amount,
	}))
}

func (f *fixture) balance(t *testing.T, accountID string) string {
	t.Helper()
	balance, err := f.movements.Balance(context.Background(), accountID)
	require.NoError(t, err)
	return balance.Amount.StringFixed(2)
}

func (f *fixture) saga(t *testing.T, key string) *models.Saga {
	t.Helper()
	saga, err := f.store.GetSaga(context.Background(), key)
	require.NoError(t, err)
	return saga
}

func (f *fixture) expectPublished(msgType notify.MessageType) {
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(m notify.Message) bool {
		return m.Type == msgType
	})).Return(nil).Once()
}

func transferRequest(key, amount string) Request {
	return Request{
		Requestor:                "acc-x",
		IdempotencyKey:           key,
		DestinationAccountNumber: 2002,
		Amount:                   decimal.RequireFromString(amount),
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.expectPublished(notify.MessageTypeTransferCompleted)

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		require.NoError(t, err)
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))
		assert.Equal(t, "50.00", f.balance(t, "acc-y"))
		assert.Equal(t, 1, f.store.TransferCount())
		assert.Equal(t, models.SAGA_COMPLETED, f.saga(t, "t-1").State)

		transfer, err := f.store.GetTransfer(ctx, TransferID("t-1"))
		require.NoError(t, err)
		assert.Equal(t, "acc-x", transfer.SourceAccountId)
		assert.Equal(t, "acc-y", transfer.DestinationAccountId)

		record, ok := f.store.IdempotencyRecord("t-1")
		require.True(t, ok)
		assert.True(t, record.IsComplete())
		assert.Nil(t, record.Outcome)

		require.Len(t, f.legs.calls, 2)
		assert.Equal(t, models.DEBIT, f.legs.calls[0].Type)
		assert.Equal(t, "t-1:debit", f.legs.calls[0].IdempotencyKey)
		assert.Equal(t, "acc-x", f.legs.calls[1].Requestor)
		assert.Equal(t, "acc-y", f.legs.calls[1].AccountId)
		assert.Equal(t, "t-1:credit", f.legs.calls[1].IdempotencyKey)
		f.publisher.AssertExpectations(t)
		f.scheduler.AssertNotCalled(t, "ScheduleSaga", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Inactive Destination", func(t *testing.T) {
		f := newFixture(t)
		req := transferRequest("t-1", "10")
		req.DestinationAccountNumber = 3003

		err := f.orch.Transfer(ctx, req)

		assert.ErrorIs(t, err, models.ErrInactiveAccount)
		assert.Equal(t, "70.00", f.balance(t, "acc-x"))
		assert.Empty(t, f.legs.calls)
		_, claimed := f.store.IdempotencyRecord("t-1")
		assert.False(t, claimed)
	})

	t.Run("Unknown Destination", func(t *testing.T) {
		f := newFixture(t)
		req := transferRequest("t-1", "10")
		req.DestinationAccountNumber = 9999

		err := f.orch.Transfer(ctx, req)

		assert.ErrorIs(t, err, models.ErrInvalidAccount)
		assert.Empty(t, f.legs.calls)
	})

	t.Run("Inactive Source", func(t *testing.T) {
		f := newFixture(t)
		req := transferRequest("t-1", "10")
		req.Requestor = "acc-z"

		err := f.orch.Transfer(ctx, req)

		assert.ErrorIs(t, err, models.ErrInactiveAccount)
		assert.Empty(t, f.legs.calls)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		f := newFixture(t)
		for _, amount := range []string{"0", "-5", "0.004"} {
			err := f.orch.Transfer(ctx, transferRequest("t-"+amount, amount))
			assert.ErrorIs(t, err, models.ErrInvalidAmount, amount)
		}
		assert.Empty(t, f.legs.calls)
	})

	t.Run("Debit Rejected", func(t *testing.T) {
		f := newFixture(t)
		f.legs.failNext("t-1:debit", models.ErrInactiveAccount)
		f.expectPublished(notify.MessageTypeTransferFailed)

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrDebitFailed)
		assert.Equal(t, "70.00", f.balance(t, "acc-x"))
		assert.Equal(t, 0, f.store.TransferCount())
		assert.Equal(t, models.DEBIT_FAILED, f.saga(t, "t-1").State)

		record, _ := f.store.IdempotencyRecord("t-1")
		require.NotNil(t, record.Outcome)
		assert.Equal(t, string(models.KindDebitFailed), *record.Outcome)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Credit Rejected Is Compensated", func(t *testing.T) {
		f := newFixture(t)
		f.legs.failNext("t-1:credit", models.ErrInactiveAccount)
		f.expectPublished(notify.MessageTypeTransferFailed)

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrCreditFailed)
		assert.Equal(t, "70.00", f.balance(t, "acc-x"))
		assert.Equal(t, "0.00", f.balance(t, "acc-y"))
		assert.Equal(t, 0, f.store.TransferCount())
		assert.Equal(t, models.COMPENSATED, f.saga(t, "t-1").State)

		record, _ := f.store.IdempotencyRecord("t-1")
		require.NotNil(t, record.Outcome)
		assert.Equal(t, string(models.KindCreditFailed), *record.Outcome)

		last := f.legs.calls[len(f.legs.calls)-1]
		assert.Equal(t, "t-1:reversal", last.IdempotencyKey)
		assert.Equal(t, models.CREDIT, last.Type)
		assert.Equal(t, "acc-x", last.Requestor)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Replay Returns Original Outcome", func(t *testing.T) {
		f := newFixture(t)
		f.expectPublished(notify.MessageTypeTransferCompleted)

		require.NoError(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")))
		require.NoError(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")))

		assert.Equal(t, "20.00", f.balance(t, "acc-x"))
		assert.Equal(t, "50.00", f.balance(t, "acc-y"))
		assert.Equal(t, 1, f.store.TransferCount())
		assert.Len(t, f.legs.calls, 2)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Replay Of Failed Transfer", func(t *testing.T) {
		f := newFixture(t)
		f.legs.failNext("t-1:credit", models.ErrInactiveAccount)
		f.expectPublished(notify.MessageTypeTransferFailed)

		assert.ErrorIs(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")), models.ErrCreditFailed)
		calls := len(f.legs.calls)

		assert.ErrorIs(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")), models.ErrCreditFailed)
		assert.Len(t, f.legs.calls, calls)
	})

	t.Run("Replay With Different Amount", func(t *testing.T) {
		f := newFixture(t)
		f.expectPublished(notify.MessageTypeTransferCompleted)

		require.NoError(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")))
		err := f.orch.Transfer(ctx, transferRequest("t-1", "60"))

		assert.ErrorIs(t, err, models.ErrFingerprintMismatch)
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))
	})

	t.Run("Client Movement Keys Cannot Stand In For Legs", func(t *testing.T) {
		f := newFixture(t)
		f.expectPublished(notify.MessageTypeTransferCompleted)
		number := int64(2002)
		require.NoError(t, f.movements.Execute(ctx, movements.Request{
			Requestor:      "acc-x",
			Amount:         decimal.NewFromInt(50),
			Type:           models.DEBIT,
			IdempotencyKey: "t-1:debit",
		}))
		require.NoError(t, f.movements.Execute(ctx, movements.Request{
			Requestor:      "acc-x",
			AccountNumber:  &number,
			Amount:         decimal.NewFromInt(50),
			Type:           models.CREDIT,
			IdempotencyKey: "t-1:credit",
		}))
		require.Equal(t, "20.00", f.balance(t, "acc-x"))
		require.Equal(t, "50.00", f.balance(t, "acc-y"))

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		require.NoError(t, err)
		assert.Equal(t, "-30.00", f.balance(t, "acc-x"))
		assert.Equal(t, "100.00", f.balance(t, "acc-y"))
		assert.Equal(t, 1, f.store.TransferCount())
		for _, leg := range f.legs.calls {
			assert.Equal(t, movements.OriginTransfer, leg.Origin)
		}
		f.publisher.AssertExpectations(t)
	})

	t.Run("Concurrent Duplicates Move Money Once", func(t *testing.T) {
		f := newFixture(t)
		f.expectPublished(notify.MessageTypeTransferCompleted)

		const callers = 20
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = f.orch.Transfer(ctx, transferRequest("t-1", "50"))
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, models.ErrTransferPending)
			}
		}
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))
		assert.Equal(t, "50.00", f.balance(t, "acc-y"))
		assert.Equal(t, 1, f.store.TransferCount())
		assert.Equal(t, models.SAGA_COMPLETED, f.saga(t, "t-1").State)
		f.publisher.AssertExpectations(t)
	})
}

func TestTransferSuspendAndResume(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown Credit Outcome", func(t *testing.T) {
		f := newFixture(t)
		f.legs.failNext("t-1:credit", errConnectionReset)
		f.scheduler.On("ScheduleSaga", mock.Anything, "t-1", 30*time.Second).Return(nil).Once()

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrTransferPending)
		saga := f.saga(t, "t-1")
		assert.Equal(t, models.CREDIT_PENDING, saga.State)
		assert.Equal(t, 1, saga.ResumeAttempts)
		assert.Contains(t, saga.LastError, "connection reset")
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))

		record, _ := f.store.IdempotencyRecord("t-1")
		assert.False(t, record.IsComplete())

		// A client retry while the saga is suspended stays pending.
		assert.ErrorIs(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")), models.ErrTransferPending)

		f.expectPublished(notify.MessageTypeTransferCompleted)
		require.NoError(t, f.orch.Resume(ctx, "t-1"))

		assert.Equal(t, models.SAGA_COMPLETED, f.saga(t, "t-1").State)
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))
		assert.Equal(t, "50.00", f.balance(t, "acc-y"))
		assert.Equal(t, 1, f.store.TransferCount())

		record, _ = f.store.IdempotencyRecord("t-1")
		assert.True(t, record.IsComplete())
		assert.NoError(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")))

		f.scheduler.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Credit Applied But Response Lost", func(t *testing.T) {
		f := newFixture(t)
		f.scheduler.On("ScheduleSaga", mock.Anything, "t-1", mock.Anything).Return(nil).Once()
		// The credit lands and then the connection drops.
		f.legs.next = executorFunc(func(ctx context.Context, req movements.Request) error {
			err := (&LocalExecutor{Movements: f.movements}).Execute(ctx, req)
			if req.IdempotencyKey == "t-1:credit" && f.store.TransferCount() == 0 && len(f.legs.calls) == 2 {
				return errConnectionReset
			}
			return err
		})

		assert.ErrorIs(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")), models.ErrTransferPending)
		assert.Equal(t, "50.00", f.balance(t, "acc-y"))

		f.expectPublished(notify.MessageTypeTransferCompleted)
		require.NoError(t, f.orch.Resume(ctx, "t-1"))

		assert.Equal(t, "50.00", f.balance(t, "acc-y"))
		assert.Equal(t, 1, f.store.TransferCount())
	})

	t.Run("Resume Attempts Exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.orch.MaxResumeAttempts = 0
		f.legs.failNext("t-1:debit", errConnectionReset, errConnectionReset)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(m notify.Message) bool {
			payload, ok := m.Payload.(notify.TransferPayload)
			return m.Type == notify.MessageTypeSagaStuck && ok &&
				payload.SagaKey == "t-1" &&
				payload.State == string(models.DEBIT_PENDING) &&
				payload.Reason == errConnectionReset.Error()
		})).Return(nil).Once()

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrTransferPending)
		assert.Equal(t, models.DEBIT_PENDING, f.saga(t, "t-1").State)
		f.scheduler.AssertNotCalled(t, "ScheduleSaga", mock.Anything, mock.Anything, mock.Anything)

		// A later sweep resumes it again without repeating the alert.
		assert.ErrorIs(t, f.orch.Resume(ctx, "t-1"), models.ErrTransferPending)
		assert.Equal(t, 2, f.saga(t, "t-1").ResumeAttempts)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Resume Of Terminal Saga", func(t *testing.T) {
		f := newFixture(t)
		f.expectPublished(notify.MessageTypeTransferCompleted)
		require.NoError(t, f.orch.Transfer(ctx, transferRequest("t-1", "50")))
		calls := len(f.legs.calls)

		require.NoError(t, f.orch.Resume(ctx, "t-1"))

		assert.Len(t, f.legs.calls, calls)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Resume Of Unknown Saga", func(t *testing.T) {
		f := newFixture(t)
		assert.Error(t, f.orch.Resume(ctx, "missing"))
	})
}

func TestCompensation(t *testing.T) {
	ctx := context.Background()

	t.Run("Retried Until Acknowledged", func(t *testing.T) {
		f := newFixture(t)
		f.legs.failNext("t-1:credit", models.ErrInactiveAccount)
		f.legs.failNext("t-1:reversal", errConnectionReset)
		f.scheduler.On("ScheduleSaga", mock.Anything, "t-1", 30*time.Second).Return(nil).Once()

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrCreditFailed)
		saga := f.saga(t, "t-1")
		assert.Equal(t, models.COMPENSATING, saga.State)
		assert.Equal(t, 1, saga.CompensationAttempts)
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))

		record, _ := f.store.IdempotencyRecord("t-1")
		require.NotNil(t, record.Outcome)
		assert.Equal(t, string(models.KindCreditFailed), *record.Outcome)

		f.expectPublished(notify.MessageTypeTransferFailed)
		assert.ErrorIs(t, f.orch.Resume(ctx, "t-1"), models.ErrCreditFailed)

		assert.Equal(t, models.COMPENSATED, f.saga(t, "t-1").State)
		assert.Equal(t, "70.00", f.balance(t, "acc-x"))
		f.scheduler.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Attempts Exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.orch.MaxCompensationAttempts = 1
		f.legs.failNext("t-1:credit", models.ErrInactiveAccount)
		f.legs.failNext("t-1:reversal", errConnectionReset)
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(m notify.Message) bool {
			payload, ok := m.Payload.(notify.TransferPayload)
			return m.Type == notify.MessageTypeCompensationFailed && ok && payload.SourceAccountID == "acc-x" && payload.Amount == "50.00"
		})).Return(nil).Once()

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrCreditFailed)
		assert.Equal(t, models.COMPENSATION_FAILED, f.saga(t, "t-1").State)
		assert.Equal(t, "20.00", f.balance(t, "acc-x"))
		f.publisher.AssertExpectations(t)
		f.scheduler.AssertNotCalled(t, "ScheduleSaga", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reversal Rejected", func(t *testing.T) {
		f := newFixture(t)
		f.legs.failNext("t-1:credit", models.ErrInactiveAccount)
		f.legs.failNext("t-1:reversal", models.ErrInactiveAccount)
		f.expectPublished(notify.MessageTypeCompensationFailed)

		err := f.orch.Transfer(ctx, transferRequest("t-1", "50"))

		assert.ErrorIs(t, err, models.ErrCreditFailed)
		assert.Equal(t, models.COMPENSATION_FAILED, f.saga(t, "t-1").State)
		f.publisher.AssertExpectations(t)
	})
}

type executorFunc func(ctx context.Context, req movements.Request) error

func (f executorFunc) Execute(ctx context.Context, req movements.Request) error {
	return f(ctx, req)
}
