package transfers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/account-transfers/pkg/idempotency"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/movements"
	"github.com/chris/account-transfers/pkg/notify"
	"github.com/chris/account-transfers/pkg/scheduler"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// transferNamespace scopes the transfer ids derived from saga keys.
var transferNamespace = uuid.MustParse("b6a1d3c2-7e44-4f0a-8c1e-2d9f6b3a5e71")

// TransferID is the id of the transfer committed by the saga with the given key.
func TransferID(sagaKey string) string {
	return uuid.NewSHA1(transferNamespace, []byte(sagaKey)).String()
}

// Request asks to move Amount from the requestor's account to the account
// with the given number.
type Request struct {
	Requestor                string
	IdempotencyKey           string
	DestinationAccountNumber int64
	Amount                   decimal.Decimal
}

type fingerprint struct {
	Source            string `json:"source"`
	DestinationNumber int64  `json:"destinationNumber"`
	Amount            string `json:"amount"`
}

// Config holds the retry limits of the Orchestrator.
type Config struct {
	MaxCompensationAttempts int
	MaxResumeAttempts       int
	ResumeDelay             time.Duration
}

// Orchestrator drives transfer sagas: debit the source, credit the
// destination, and refund the source when the credit is rejected. Every
// state transition is persisted so a saga can be resumed after a crash.
type Orchestrator struct {
	Accounts                storage.AccountDirectory
	Guard                   *idempotency.Guard
	Sagas                   storage.SagaStore
	Transfers               storage.TransferStore
	Legs                    Executor
	Scheduler               scheduler.Scheduler
	Publisher               notify.Publisher
	MaxCompensationAttempts int
	MaxResumeAttempts       int
	ResumeDelay             time.Duration
	Now                     func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	accounts storage.AccountDirectory,
	guard *idempotency.Guard,
	sagas storage.SagaStore,
	transfers storage.TransferStore,
	legs Executor,
	sched scheduler.Scheduler,
	publisher notify.Publisher,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		Accounts:                accounts,
		Guard:                   guard,
		Sagas:                   sagas,
		Transfers:               transfers,
		Legs:                    legs,
		Scheduler:               sched,
		Publisher:               publisher,
		MaxCompensationAttempts: cfg.MaxCompensationAttempts,
		MaxResumeAttempts:       cfg.MaxResumeAttempts,
		ResumeDelay:             cfg.ResumeDelay,
		Now:                     time.Now,
	}
}

// Transfer validates the request, claims its idempotency key and drives a new
// saga. Replays return the outcome of the original request, so a replay of a
// failed transfer fails again with the stored kind.
func (o *Orchestrator) Transfer(ctx context.Context, req Request) error {
	// 1. Pre-validate. This is best effort; the legs validate again.
	if !req.Amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return models.ErrInvalidAmount
	}

	source, err := o.account(func() (*models.Account, error) {
		return o.Accounts.GetAccount(ctx, req.Requestor)
	})
	if err != nil {
		return err
	}
	if !source.Active {
		return models.ErrInactiveAccount
	}

	destination, err := o.account(func() (*models.Account, error) {
		return o.Accounts.GetAccountByNumber(ctx, req.DestinationAccountNumber)
	})
	if err != nil {
		return err
	}
	if !destination.Active {
		return models.ErrInactiveAccount
	}

	// 2. Claim the saga key.
	fp, err := idempotency.Fingerprint(fingerprint{
		Source:            source.Id,
		DestinationNumber: destination.Number,
		Amount:            amount.StringFixed(2),
	})
	if err != nil {
		return err
	}

	claim, err := o.Guard.Claim(ctx, req.IdempotencyKey, fp)
	if err != nil {
		return err
	}
	if !claim.Claimed && claim.Record.IsComplete() {
		slog.Info("transfer replayed", "sagaKey", req.IdempotencyKey)
		if claim.Record.Outcome == nil {
			return nil
		}
		return models.ErrorForKind(models.ErrorKind(*claim.Record.Outcome))
	}

	// 3. Start the saga. An unfinished claim may belong to a process that
	// died before creating it, so a replay tries to create it as well.
	now := o.now()
	saga := &models.Saga{
		Key:                  req.IdempotencyKey,
		SourceAccountId:      source.Id,
		DestinationAccountId: destination.Id,
		Amount:               amount,
		State:                models.STARTED,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return o.start(ctx, saga)
}

// Resume continues a saga from its last persisted state.
func (o *Orchestrator) Resume(ctx context.Context, key string) error {
	saga, err := o.Sagas.GetSaga(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load saga: %w", err)
	}
	slog.Info("resuming transfer saga", "sagaKey", key, "state", saga.State)
	return o.drive(ctx, saga)
}

func (o *Orchestrator) start(ctx context.Context, saga *models.Saga) error {
	err := o.Sagas.CreateSaga(ctx, saga)
	if errors.Is(err, storage.ErrSagaExists) {
		existing, err := o.Sagas.GetSaga(ctx, saga.Key)
		if err != nil {
			return fmt.Errorf("failed to load saga: %w", err)
		}
		if existing.State.Terminal() {
			return o.settle(ctx, existing)
		}
		return models.ErrTransferPending
	}
	if err != nil {
		return fmt.Errorf("failed to create saga: %w", err)
	}

	slog.Info("transfer saga started", "sagaKey", saga.Key, "source", saga.SourceAccountId, "destination", saga.DestinationAccountId, "amount", saga.Amount.StringFixed(2))
	return o.drive(ctx, saga)
}

// drive advances the saga until it reaches a terminal state or has to wait.
func (o *Orchestrator) drive(ctx context.Context, saga *models.Saga) error {
	wasTerminal := saga.State.Terminal()

	for !saga.State.Terminal() {
		var err error
		switch saga.State {
		case models.STARTED:
			err = o.transition(ctx, saga, models.DEBIT_PENDING)
		case models.DEBIT_PENDING:
			err = o.debit(ctx, saga)
		case models.DEBIT_CONFIRMED:
			err = o.transition(ctx, saga, models.CREDIT_PENDING)
		case models.CREDIT_PENDING:
			err = o.credit(ctx, saga)
		case models.CREDIT_FAILED:
			err = o.transition(ctx, saga, models.COMPENSATING)
		case models.COMPENSATING:
			err = o.compensate(ctx, saga)
		default:
			return fmt.Errorf("saga %s is in unknown state %s", saga.Key, saga.State)
		}
		if err != nil {
			return o.interrupted(ctx, saga, err)
		}
	}

	if !wasTerminal {
		o.announce(ctx, saga)
	}
	return o.settle(ctx, saga)
}

// debit runs the first leg against the source.
func (o *Orchestrator) debit(ctx context.Context, saga *models.Saga) error {
	err := o.Legs.Execute(ctx, movements.Request{
		Requestor:      saga.SourceAccountId,
		Amount:         saga.Amount,
		Type:           models.DEBIT,
		IdempotencyKey: saga.DebitKey(),
		Origin:         movements.OriginTransfer,
	})
	switch {
	case err == nil:
		return o.transition(ctx, saga, models.DEBIT_CONFIRMED)
	case models.IsRejection(err):
		saga.LastError = err.Error()
		return o.transition(ctx, saga, models.DEBIT_FAILED)
	default:
		return o.suspend(ctx, saga, err)
	}
}

// credit runs the second leg against the destination and commits the
// transfer record once it is durable.
func (o *Orchestrator) credit(ctx context.Context, saga *models.Saga) error {
	err := o.Legs.Execute(ctx, movements.Request{
		Requestor:      saga.SourceAccountId,
		AccountId:      saga.DestinationAccountId,
		Amount:         saga.Amount,
		Type:           models.CREDIT,
		IdempotencyKey: saga.CreditKey(),
		Origin:         movements.OriginTransfer,
	})
	switch {
	case err == nil:
		return o.commit(ctx, saga)
	case models.IsRejection(err):
		saga.LastError = err.Error()
		slog.Warn("credit leg rejected, compensating", "sagaKey", saga.Key, "error", err)
		return o.transition(ctx, saga, models.CREDIT_FAILED)
	default:
		return o.suspend(ctx, saga, err)
	}
}

func (o *Orchestrator) commit(ctx context.Context, saga *models.Saga) error {
	transfer := &models.Transfer{
		Id:                   TransferID(saga.Key),
		SourceAccountId:      saga.SourceAccountId,
		DestinationAccountId: saga.DestinationAccountId,
		Amount:               saga.Amount,
		CreatedAt:            o.now(),
	}
	if err := o.Transfers.CreateTransfer(ctx, transfer); err != nil && !errors.Is(err, storage.ErrTransferExists) {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return o.transition(ctx, saga, models.SAGA_COMPLETED)
}

// compensate refunds the source. A reversal whose outcome is unknown is retried until
// it is acknowledged or the attempts run out; the caller learns about the
// failed credit right away.
func (o *Orchestrator) compensate(ctx context.Context, saga *models.Saga) error {
	err := o.Legs.Execute(ctx, movements.Request{
		Requestor:      saga.SourceAccountId,
		Amount:         saga.Amount,
		Type:           models.CREDIT,
		IdempotencyKey: saga.ReversalKey(),
		Origin:         movements.OriginTransfer,
	})
	if err == nil {
		return o.transition(ctx, saga, models.COMPENSATED)
	}

	saga.CompensationAttempts++
	saga.LastError = err.Error()
	if models.IsRejection(err) || saga.CompensationAttempts >= o.MaxCompensationAttempts {
		return o.transition(ctx, saga, models.COMPENSATION_FAILED)
	}

	slog.Warn("compensation attempt failed, will retry", "sagaKey", saga.Key, "attempt", saga.CompensationAttempts, "error", err)
	if err := o.transition(ctx, saga, models.COMPENSATING); err != nil {
		return err
	}
	o.scheduleResume(ctx, saga)
	if err := o.Guard.Complete(ctx, saga.Key, idempotency.Outcome(models.KindCreditFailed)); err != nil {
		slog.Error("failed to complete transfer key", "sagaKey", saga.Key, "error", err)
	}
	return models.ErrCreditFailed
}

// suspend records a leg failure with an unknown outcome and schedules the
// saga to be resumed. The leg is retried with the same key, which is safe.
func (o *Orchestrator) suspend(ctx context.Context, saga *models.Saga, cause error) error {
	saga.ResumeAttempts++
	saga.LastError = cause.Error()
	saga.UpdatedAt = o.now()
	if err := o.Sagas.TransitionSaga(ctx, saga, saga.State); err != nil {
		return err
	}

	if saga.ResumeAttempts > o.MaxResumeAttempts {
		slog.Error("transfer saga is stuck, manual reconciliation required",
			"alert", "manual_reconciliation",
			"sagaKey", saga.Key,
			"state", saga.State,
			"attempts", saga.ResumeAttempts,
			"error", cause,
		)
		// Alert once; later sweeps only log.
		if saga.ResumeAttempts == o.MaxResumeAttempts+1 {
			o.publish(ctx, notify.MessageTypeSagaStuck, saga)
		}
		return models.ErrTransferPending
	}

	slog.Warn("transfer leg outcome unknown, saga suspended", "sagaKey", saga.Key, "state", saga.State, "error", cause)
	o.scheduleResume(ctx, saga)
	return models.ErrTransferPending
}

// interrupted maps the error that stopped drive to the caller's result.
func (o *Orchestrator) interrupted(ctx context.Context, saga *models.Saga, err error) error {
	if errors.Is(err, storage.ErrSagaStateConflict) {
		// Another worker moved the saga on.
		current, getErr := o.Sagas.GetSaga(ctx, saga.Key)
		if getErr != nil {
			return fmt.Errorf("failed to reload saga: %w", getErr)
		}
		if current.State.Terminal() {
			return o.settle(ctx, current)
		}
		return models.ErrTransferPending
	}

	if models.IsRejection(err) {
		return err
	}

	slog.Error("transfer saga interrupted", "sagaKey", saga.Key, "state", saga.State, "error", err)
	o.scheduleResume(ctx, saga)
	return err
}

// transition moves the saga to next, guarded on its current state.
func (o *Orchestrator) transition(ctx context.Context, saga *models.Saga, next models.SagaState) error {
	if !saga.State.CanTransitionTo(next) {
		return fmt.Errorf("saga %s cannot move from %s to %s", saga.Key, saga.State, next)
	}

	from := saga.State
	saga.State = next
	saga.UpdatedAt = o.now()
	if err := o.Sagas.TransitionSaga(ctx, saga, from); err != nil {
		saga.State = from
		return err
	}

	slog.Debug("transfer saga transitioned", "sagaKey", saga.Key, "from", from, "to", next)
	return nil
}

// settle completes the saga key with the outcome of a terminal saga and
// returns the caller's result.
func (o *Orchestrator) settle(ctx context.Context, saga *models.Saga) error {
	var outcome *string
	var result error
	switch saga.State {
	case models.SAGA_COMPLETED:
	case models.DEBIT_FAILED:
		outcome, result = idempotency.Outcome(models.KindDebitFailed), models.ErrDebitFailed
	case models.COMPENSATED, models.COMPENSATION_FAILED:
		outcome, result = idempotency.Outcome(models.KindCreditFailed), models.ErrCreditFailed
	default:
		return fmt.Errorf("saga %s is not terminal: %s", saga.Key, saga.State)
	}

	if err := o.Guard.Complete(ctx, saga.Key, outcome); err != nil {
		if !errors.Is(err, storage.ErrIdempotencyKeyNotFound) {
			return err
		}
		// The key outlived its retention; the saga itself is the record.
		slog.Warn("transfer key expired before the saga settled", "sagaKey", saga.Key, "state", saga.State)
	}
	return result
}

// announce records the end of a saga that reached its terminal state in this call.
func (o *Orchestrator) announce(ctx context.Context, saga *models.Saga) {
	observeOutcome(saga.State)

	var msgType notify.MessageType
	switch saga.State {
	case models.SAGA_COMPLETED:
		msgType = notify.MessageTypeTransferCompleted
		slog.Info("transfer completed", "sagaKey", saga.Key, "transferId", TransferID(saga.Key))
	case models.COMPENSATION_FAILED:
		msgType = notify.MessageTypeCompensationFailed
		slog.Error("compensation failed, manual reconciliation required",
			"alert", "manual_reconciliation",
			"sagaKey", saga.Key,
			"source", saga.SourceAccountId,
			"amount", saga.Amount.StringFixed(2),
			"attempts", saga.CompensationAttempts,
			"error", saga.LastError,
		)
	default:
		msgType = notify.MessageTypeTransferFailed
		slog.Info("transfer failed", "sagaKey", saga.Key, "state", saga.State, "reason", saga.LastError)
	}

	o.publish(ctx, msgType, saga)
}

func (o *Orchestrator) publish(ctx context.Context, msgType notify.MessageType, saga *models.Saga) {
	if o.Publisher == nil {
		return
	}

	payload := notify.TransferPayload{
		SagaKey:              saga.Key,
		SourceAccountID:      saga.SourceAccountId,
		DestinationAccountID: saga.DestinationAccountId,
		Amount:               saga.Amount.StringFixed(2),
		State:                string(saga.State),
		Reason:               saga.LastError,
	}
	if saga.State == models.SAGA_COMPLETED {
		payload.TransferID = TransferID(saga.Key)
	}

	if err := o.Publisher.Publish(ctx, notify.Message{Type: msgType, Payload: payload}); err != nil {
		slog.Error("failed to publish transfer event", "sagaKey", saga.Key, "type", msgType, "error", err)
	}
}

func (o *Orchestrator) scheduleResume(ctx context.Context, saga *models.Saga) {
	if o.Scheduler == nil {
		return
	}
	if err := o.Scheduler.ScheduleSaga(ctx, saga.Key, o.ResumeDelay); err != nil {
		slog.Error("failed to schedule saga resume", "sagaKey", saga.Key, "error", err)
	}
}

// account maps a missing account to ErrInvalidAccount.
func (o *Orchestrator) account(get func() (*models.Account, error)) (*models.Account, error) {
	account, err := get()
	if errors.Is(err, storage.ErrAccountNotFound) {
		return nil, models.ErrInvalidAccount
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return account, nil
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now().UTC()
}
