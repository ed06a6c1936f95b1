package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/handlers/respond"
	"github.com/chris/account-transfers/pkg/mapping"
	"github.com/chris/account-transfers/pkg/movements"
)

// MovementService is the part of the movement service used by the handlers.
type MovementService interface {
	Execute(ctx context.Context, req movements.Request) error
	Balance(ctx context.Context, requestor string) (*movements.Balance, error)
}

// AccountsHandler holds the dependencies for account-related handlers.
type AccountsHandler struct {
	Movements MovementService
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(service MovementService) *AccountsHandler {
	return &AccountsHandler{Movements: service}
}

// CreateMovement records a credit or debit.
func (h *AccountsHandler) CreateMovement(w http.ResponseWriter, r *http.Request, params api.CreateMovementParams) {
	var newMovement api.NewMovement
	if err := json.NewDecoder(r.Body).Decode(&newMovement); err != nil {
		respond.JSON(w, http.StatusBadRequest, &api.Error{Kind: api.INVALIDVALUE, Message: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if newMovement.IdempotencyKey == "" {
		respond.JSON(w, http.StatusBadRequest, &api.Error{Kind: api.INVALIDVALUE, Message: "idempotencyKey is required"})
		return
	}

	origin := movements.OriginClient
	if value := r.Header.Get(api.MovementOriginHeader); value != "" {
		origin = movements.Origin(value)
		if !origin.Valid() {
			respond.JSON(w, http.StatusBadRequest, &api.Error{Kind: api.INVALIDVALUE, Message: fmt.Sprintf("unknown movement origin %q", value)})
			return
		}
	}

	req := mapping.ToDomainMovementRequest(params.XAccountId, origin, &newMovement)
	if err := h.Movements.Execute(r.Context(), req); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns the requestor's balance.
func (h *AccountsHandler) GetBalance(w http.ResponseWriter, r *http.Request, params api.GetBalanceParams) {
	balance, err := h.Movements.Balance(r.Context(), params.XAccountId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiBalance(balance))
}
