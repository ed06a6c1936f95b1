package movements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/account-transfers/pkg/idempotency"
	"github.com/chris/account-transfers/pkg/ledger"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// movementNamespace scopes the movement ids derived from idempotency keys.
var movementNamespace = uuid.MustParse("5f0c7a8e-3b1d-4c2a-9e57-1a6d2f4b8c90")

// Origin identifies who issued a movement. Each origin has its own
// idempotency key space, so a client key can never stand in for a transfer leg.
type Origin string

const (
	OriginClient   Origin = "client"
	OriginTransfer Origin = "transfer"
)

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	return o == OriginClient || o == OriginTransfer
}

// Key scopes idempotencyKey to the origin. An empty origin is a client.
func (o Origin) Key(idempotencyKey string) string {
	if o == "" {
		o = OriginClient
	}
	return string(o) + "/" + idempotencyKey
}

// Request is a single signed operation against one account. The target is
// the requestor unless AccountId or AccountNumber is set.
type Request struct {
	Requestor      string
	AccountId      string
	AccountNumber  *int64
	Amount         decimal.Decimal
	Type           models.MovementType
	IdempotencyKey string
	Origin         Origin
}

// fingerprint is the part of a request that must match on replay.
type fingerprint struct {
	Target string `json:"target"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// Balance is the derived balance of an account at a point in time.
type Balance struct {
	Account *models.Account
	Amount  decimal.Decimal
	Date    time.Time
}

// Service validates and executes movements.
type Service struct {
	Accounts storage.AccountDirectory
	Guard    *idempotency.Guard
	Ledger   *ledger.Ledger
}

// NewService creates a new Service.
func NewService(accounts storage.AccountDirectory, guard *idempotency.Guard, l *ledger.Ledger) *Service {
	return &Service{Accounts: accounts, Guard: guard, Ledger: l}
}

// MovementID is the id of the single movement a claimed key may produce. The
// key is the origin-scoped one.
func MovementID(idempotencyKey string) string {
	return uuid.NewSHA1(movementNamespace, []byte(idempotencyKey)).String()
}

// Execute validates and records a movement. Replaying a key whose operation
// already completed succeeds without side effects.
func (s *Service) Execute(ctx context.Context, req Request) error {
	// 1. Resolve the target.
	var target *models.Account
	targetID := req.Requestor
	switch {
	case req.AccountId != "":
		targetID = req.AccountId
	case req.AccountNumber != nil:
		account, err := s.lookup(func() (*models.Account, error) {
			return s.Accounts.GetAccountByNumber(ctx, *req.AccountNumber)
		})
		if err != nil {
			return err
		}
		target, targetID = account, account.Id
	}

	// 2. Somebody else's account can only be credited.
	if targetID != req.Requestor && req.Type != models.CREDIT {
		return models.ErrUnauthorized
	}

	// 3. Validate the operation itself.
	if !req.Amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return models.ErrInvalidType
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return models.ErrInvalidAmount
	}

	// 4. The target must exist and be active.
	if target == nil {
		account, err := s.lookup(func() (*models.Account, error) {
			return s.Accounts.GetAccount(ctx, targetID)
		})
		if err != nil {
			return err
		}
		target = account
	}
	if !target.Active {
		return models.ErrInactiveAccount
	}

	// 5. Claim the key.
	fp, err := idempotency.Fingerprint(fingerprint{
		Target: target.Id,
		Amount: amount.StringFixed(2),
		Type:   string(req.Type),
	})
	if err != nil {
		return err
	}

	key := req.Origin.Key(req.IdempotencyKey)
	claim, err := s.Guard.Claim(ctx, key, fp)
	if err != nil {
		return err
	}
	if !claim.Claimed && claim.Record.IsComplete() {
		slog.Debug("movement replayed", "idempotencyKey", key)
		return nil
	}

	// 6. Record the movement. The id is derived from the key so a replay of an
	// unfinished claim cannot produce a second row.
	_, err = s.Ledger.RecordMovement(ctx, models.Movement{
		Id:        MovementID(key),
		AccountId: target.Id,
		Type:      req.Type,
		Amount:    amount,
	})
	if err != nil && !errors.Is(err, storage.ErrMovementExists) {
		return err
	}

	return s.Guard.Complete(ctx, key, nil)
}

// Balance returns the balance of the requestor's account.
func (s *Service) Balance(ctx context.Context, requestor string) (*Balance, error) {
	account, err := s.lookup(func() (*models.Account, error) {
		return s.Accounts.GetAccount(ctx, requestor)
	})
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, models.ErrInactiveAccount
	}

	amount, err := s.Ledger.Balance(ctx, account.Id)
	if err != nil {
		return nil, err
	}

	return &Balance{Account: account, Amount: amount, Date: s.Ledger.Now().UTC()}, nil
}

// lookup maps a missing account to ErrInvalidAccount.
func (s *Service) lookup(get func() (*models.Account, error)) (*models.Account, error) {
	account, err := get()
	if errors.Is(err, storage.ErrAccountNotFound) {
		return nil, models.ErrInvalidAccount
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return account, nil
}
