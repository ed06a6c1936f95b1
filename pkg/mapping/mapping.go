package mapping

import (
	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/movements"
	"github.com/chris/account-transfers/pkg/transfers"
	"github.com/google/uuid"
)

// ToDomainMovementRequest converts an API NewMovement model to a movement request on behalf of requestor.
func ToDomainMovementRequest(requestor string, origin movements.Origin, m *api.NewMovement) movements.Request {
	req := movements.Request{
		Requestor:      requestor,
		AccountNumber:  m.AccountNumber,
		Amount:         m.Amount,
		Type:           models.MovementType(m.Type),
		IdempotencyKey: m.IdempotencyKey,
		Origin:         origin,
	}
	if m.AccountId != nil {
		req.AccountId = *m.AccountId
	}
	return req
}

// ToDomainTransferRequest converts an API NewTransfer model to a transfer request on behalf of requestor.
func ToDomainTransferRequest(requestor string, t *api.NewTransfer) transfers.Request {
	return transfers.Request{
		Requestor:                requestor,
		IdempotencyKey:           t.IdempotencyKey,
		DestinationAccountNumber: t.DestinationAccountNumber,
		Amount:                   t.Amount,
	}
}

// ToApiBalance converts a derived balance to an API Balance model.
func ToApiBalance(b *movements.Balance) *api.Balance {
	return &api.Balance{
		AccountId: b.Account.Id,
		Number:    b.Account.Number,
		Name:      b.Account.Name,
		Date:      b.Date,
		Balance:   b.Amount.StringFixed(2),
	}
}

// ToApiTransfer converts a domain Transfer model to an API Transfer model.
func ToApiTransfer(t *models.Transfer) *api.Transfer {
	return &api.Transfer{
		Id:                   uuid.MustParse(t.Id),
		SourceAccountId:      t.SourceAccountId,
		DestinationAccountId: t.DestinationAccountId,
		Amount:               t.Amount.StringFixed(2),
		CreatedAt:            t.CreatedAt,
	}
}

// ToApiError converts a rejection to an API Error model.
func ToApiError(err *models.Error) *api.Error {
	return &api.Error{
		Kind:    api.ErrorKind(err.Kind),
		Message: err.Message,
	}
}
