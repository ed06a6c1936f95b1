package storage

// LedgerBackend is everything the account service persists or reads.
type LedgerBackend interface {
	AccountDirectory
	IdempotencyStore
	LedgerStore
}

// Storage defines the root interface for the entire data layer.
// Components should depend on the granular interfaces instead of this one.
type Storage interface {
	LedgerBackend
	SagaStore
	TransferStore
}
