package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
)

// Store is an in-memory implementation of storage.Storage used by the
// scenario tests. Every conditional write of the DynamoDB store is reproduced
// under a single mutex.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]models.Account
	movements   map[string]models.Movement
	idempotency map[string]models.IdempotencyRecord
	transfers   map[string]models.Transfer
	sagas       map[string]models.Saga
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:    make(map[string]models.Account),
		movements:   make(map[string]models.Movement),
		idempotency: make(map[string]models.IdempotencyRecord),
		transfers:   make(map[string]models.Transfer),
		sagas:       make(map[string]models.Saga),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// PutAccount registers an account. Accounts are owned by another service, so
// this is only used to seed the directory.
func (s *Store) PutAccount(account models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Id] = account
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrAccountNotFound)
	}
	return &account, nil
}

func (s *Store) GetAccountByNumber(ctx context.Context, number int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Number == number {
			return &account, nil
		}
	}
	return nil, fmt.Errorf("account number %d: %w", number, storage.ErrAccountNotFound)
}

func (s *Store) ClaimKey(ctx context.Context, record *models.IdempotencyRecord) (*models.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.idempotency[record.Key]; ok {
		return &existing, nil
	}
	record.Status = models.IN_PROGRESS
	record.Outcome = nil
	record.CreatedAt = time.Now().UTC()
	record.CompletedAt = nil
	s.idempotency[record.Key] = *record
	return nil, nil
}

func (s *Store) CompleteKey(ctx context.Context, key string, outcome *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.idempotency[key]
	if !ok {
		return fmt.Errorf("idempotency key %s: %w", key, storage.ErrIdempotencyKeyNotFound)
	}
	if record.IsComplete() {
		if !sameOutcome(record.Outcome, outcome) {
			return fmt.Errorf("idempotency key %s: %w", key, storage.ErrOutcomeConflict)
		}
		return nil
	}
	now := time.Now().UTC()
	record.Status = models.COMPLETED
	record.CompletedAt = &now
	if outcome != nil {
		o := *outcome
		record.Outcome = &o
	}
	s.idempotency[key] = record
	return nil
}

func sameOutcome(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IdempotencyRecord returns a copy of the record stored for key.
func (s *Store) IdempotencyRecord(key string) (models.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.idempotency[key]
	return record, ok
}

func (s *Store) AppendMovement(ctx context.Context, movement *models.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movements[movement.Id]; ok {
		return fmt.Errorf("movement %s: %w", movement.Id, storage.ErrMovementExists)
	}
	s.movements[movement.Id] = *movement
	return nil
}

func (s *Store) ListMovements(ctx context.Context, accountID string) ([]models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var movements []models.Movement
	for _, m := range s.movements {
		if m.AccountId == accountID {
			movements = append(movements, m)
		}
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt.Before(movements[j].CreatedAt)
	})
	return movements, nil
}

func (s *Store) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transfers[transfer.Id]; ok {
		return fmt.Errorf("transfer %s: %w", transfer.Id, storage.ErrTransferExists)
	}
	s.transfers[transfer.Id] = *transfer
	return nil
}

func (s *Store) GetTransfer(ctx context.Context, transferID string) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transfer, ok := s.transfers[transferID]
	if !ok {
		return nil, fmt.Errorf("transfer %s: %w", transferID, storage.ErrTransferNotFound)
	}
	return &transfer, nil
}

// TransferCount returns the number of committed transfers.
func (s *Store) TransferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transfers)
}

func (s *Store) CreateSaga(ctx context.Context, saga *models.Saga) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sagas[saga.Key]; ok {
		return fmt.Errorf("saga %s: %w", saga.Key, storage.ErrSagaExists)
	}
	s.sagas[saga.Key] = *saga
	return nil
}

func (s *Store) GetSaga(ctx context.Context, key string) (*models.Saga, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saga, ok := s.sagas[key]
	if !ok {
		return nil, fmt.Errorf("saga %s: %w", key, storage.ErrSagaNotFound)
	}
	return &saga, nil
}

func (s *Store) TransitionSaga(ctx context.Context, saga *models.Saga, from models.SagaState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sagas[saga.Key]
	if !ok || stored.State != from {
		return fmt.Errorf("saga %s left %s: %w", saga.Key, from, storage.ErrSagaStateConflict)
	}
	stored.State = saga.State
	stored.ResumeAttempts = saga.ResumeAttempts
	stored.CompensationAttempts = saga.CompensationAttempts
	stored.LastError = saga.LastError
	stored.UpdatedAt = saga.UpdatedAt
	s.sagas[saga.Key] = stored
	return nil
}

func (s *Store) ListStaleSagas(ctx context.Context, maxAge time.Duration) ([]models.Saga, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-maxAge)
	var sagas []models.Saga
	for _, saga := range s.sagas {
		if !saga.State.Terminal() && saga.UpdatedAt.Before(cutoff) {
			sagas = append(sagas, saga)
		}
	}
	sort.Slice(sagas, func(i, j int) bool {
		return sagas[i].UpdatedAt.Before(sagas[j].UpdatedAt)
	})
	return sagas, nil
}
