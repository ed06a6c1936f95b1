package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
)

// Claim is the result of claiming a key. When Claimed is false the key was
// already taken and Record holds the stored record.
type Claim struct {
	Claimed bool
	Record  *models.IdempotencyRecord
}

// Guard makes operations keyed by a client token run at most once.
type Guard struct {
	Store storage.IdempotencyStore
}

// NewGuard creates a new Guard.
func NewGuard(store storage.IdempotencyStore) *Guard {
	return &Guard{Store: store}
}

// Claim atomically takes ownership of key. Exactly one caller observes a
// successful claim; every other caller gets the stored record back. A replay
// carrying a different fingerprint is rejected with ErrFingerprintMismatch.
func (g *Guard) Claim(ctx context.Context, key, fingerprint string) (Claim, error) {
	existing, err := g.Store.ClaimKey(ctx, &models.IdempotencyRecord{
		Key:         key,
		Fingerprint: fingerprint,
	})
	if err != nil {
		return Claim{}, fmt.Errorf("failed to claim idempotency key: %w", err)
	}

	if existing == nil {
		return Claim{Claimed: true}, nil
	}

	if existing.Fingerprint != fingerprint {
		return Claim{}, models.ErrFingerprintMismatch
	}

	return Claim{Record: existing}, nil
}

// Complete records the outcome of the operation guarded by key. A nil outcome
// means success.
func (g *Guard) Complete(ctx context.Context, key string, outcome *string) error {
	if err := g.Store.CompleteKey(ctx, key, outcome); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Outcome returns the stored outcome for a rejection kind.
func Outcome(kind models.ErrorKind) *string {
	s := string(kind)
	return &s
}

// Fingerprint hashes the canonical JSON encoding of a request.
func Fingerprint(request any) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request for fingerprint: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
