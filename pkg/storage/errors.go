package storage

import "errors"

// ErrAccountNotFound is returned when the directory has no account for the given id or number.
var ErrAccountNotFound = errors.New("account not found")

// ErrMovementExists is returned when a movement with the same id was already appended.
var ErrMovementExists = errors.New("movement already recorded")

// ErrIdempotencyKeyNotFound is returned when completing a key that was never claimed.
var ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")

// ErrOutcomeConflict is returned when a completed key is completed again with a different outcome.
var ErrOutcomeConflict = errors.New("idempotency key already completed with a different outcome")

// ErrSagaExists is returned when a saga with the same key was already created.
var ErrSagaExists = errors.New("saga already exists")

// ErrSagaNotFound is returned when no saga exists for the given key.
var ErrSagaNotFound = errors.New("saga not found")

// ErrSagaStateConflict is returned when a saga transition loses a race, i.e. the saga is no longer in the expected state.
var ErrSagaStateConflict = errors.New("saga is not in the expected state")

// ErrTransferExists is returned when the transfer record was already written.
var ErrTransferExists = errors.New("transfer already recorded")

// ErrTransferNotFound is returned when no transfer exists for the given id.
var ErrTransferNotFound = errors.New("transfer not found")
