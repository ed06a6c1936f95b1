package transfers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/handlers/respond"
	"github.com/chris/account-transfers/pkg/mapping"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/chris/account-transfers/pkg/transfers"
	"github.com/oapi-codegen/runtime/types"
)

// TransferService starts transfer sagas.
type TransferService interface {
	Transfer(ctx context.Context, req transfers.Request) error
}

// TransfersHandler holds the dependencies for transfer-related handlers.
type TransfersHandler struct {
	Transfers TransferService
	Store     storage.TransferStore
}

// NewTransfersHandler creates a new TransfersHandler.
func NewTransfersHandler(service TransferService, store storage.TransferStore) *TransfersHandler {
	return &TransfersHandler{Transfers: service, Store: store}
}

// CreateTransfer moves money from the requestor's account to another account.
func (h *TransfersHandler) CreateTransfer(w http.ResponseWriter, r *http.Request, params api.CreateTransferParams) {
	var newTransfer api.NewTransfer
	if err := json.NewDecoder(r.Body).Decode(&newTransfer); err != nil {
		respond.JSON(w, http.StatusBadRequest, &api.Error{Kind: api.INVALIDVALUE, Message: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if newTransfer.IdempotencyKey == "" {
		respond.JSON(w, http.StatusBadRequest, &api.Error{Kind: api.INVALIDVALUE, Message: "idempotencyKey is required"})
		return
	}

	req := mapping.ToDomainTransferRequest(params.XAccountId, &newTransfer)
	if err := h.Transfers.Transfer(r.Context(), req); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTransferById returns a committed transfer. Only the accounts involved may see it.
func (h *TransfersHandler) GetTransferById(w http.ResponseWriter, r *http.Request, transferId types.UUID, params api.GetTransferByIdParams) {
	transfer, err := h.Store.GetTransfer(r.Context(), transferId.String())
	if err != nil {
		if errors.Is(err, storage.ErrTransferNotFound) {
			http.Error(w, "Transfer not found", http.StatusNotFound)
			return
		}
		respond.Error(w, r, err)
		return
	}

	if transfer.SourceAccountId != params.XAccountId && transfer.DestinationAccountId != params.XAccountId {
		http.Error(w, "Transfer not found", http.StatusNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiTransfer(transfer))
}
