package models

import "errors"

// ErrorKind is the machine-readable code returned to callers.
type ErrorKind string

const (
	KindInvalidValue        ErrorKind = "INVALID_VALUE"
	KindInvalidType         ErrorKind = "INVALID_TYPE"
	KindInvalidAccount      ErrorKind = "INVALID_ACCOUNT"
	KindInactiveAccount     ErrorKind = "INACTIVE_ACCOUNT"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindIdempotencyMismatch ErrorKind = "IDEMPOTENCY_MISMATCH"
	KindDebitFailed         ErrorKind = "DEBIT_FAILED"
	KindCreditFailed        ErrorKind = "CREDIT_FAILED"
	KindTransferPending     ErrorKind = "TRANSFER_PENDING"
)

// Error is a business rejection. Rejections never have side effects, which is
// what makes them safe to report without retrying.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

var (
	ErrInvalidAmount       = &Error{Kind: KindInvalidValue, Message: "amount must be positive"}
	ErrInvalidType         = &Error{Kind: KindInvalidType, Message: "movement type must be C or D"}
	ErrInvalidAccount      = &Error{Kind: KindInvalidAccount, Message: "account does not exist"}
	ErrInactiveAccount     = &Error{Kind: KindInactiveAccount, Message: "account is inactive"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "only credits are allowed on third-party accounts"}
	ErrFingerprintMismatch = &Error{Kind: KindIdempotencyMismatch, Message: "idempotency key reused with a different request"}
	ErrDebitFailed         = &Error{Kind: KindDebitFailed, Message: "debit of the source account failed"}
	ErrCreditFailed        = &Error{Kind: KindCreditFailed, Message: "credit of the destination account failed"}
	ErrTransferPending     = &Error{Kind: KindTransferPending, Message: "transfer is still being processed"}
)

// KindOf extracts the rejection kind from err.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsRejection reports whether err is a business rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	_, ok := KindOf(err)
	return ok
}

// ErrorForKind returns the canonical rejection for a stored outcome kind.
func ErrorForKind(kind ErrorKind) error {
	for _, e := range []*Error{ErrInvalidAmount, ErrInvalidType, ErrInvalidAccount, ErrInactiveAccount, ErrUnauthorized, ErrFingerprintMismatch, ErrDebitFailed, ErrCreditFailed, ErrTransferPending} {
		if e.Kind == kind {
			return e
		}
	}
	return &Error{Kind: kind, Message: string(kind)}
}
