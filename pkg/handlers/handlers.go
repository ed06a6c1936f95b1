package handlers

import (
	"net/http"

	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/handlers/accounts"
	"github.com/chris/account-transfers/pkg/handlers/transfers"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ApiHandler implements the generated server interface.
// Each process serves one of the two services; the other one's routes answer 501.
type ApiHandler struct {
	Accounts  *accounts.AccountsHandler
	Transfers *transfers.TransfersHandler
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(accountsHandler *accounts.AccountsHandler, transfersHandler *transfers.TransfersHandler) *ApiHandler {
	return &ApiHandler{Accounts: accountsHandler, Transfers: transfersHandler}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

func (h *ApiHandler) CreateMovement(w http.ResponseWriter, r *http.Request, params api.CreateMovementParams) {
	if h.Accounts == nil {
		api.Unimplemented{}.CreateMovement(w, r, params)
		return
	}
	h.Accounts.CreateMovement(w, r, params)
}

func (h *ApiHandler) GetBalance(w http.ResponseWriter, r *http.Request, params api.GetBalanceParams) {
	if h.Accounts == nil {
		api.Unimplemented{}.GetBalance(w, r, params)
		return
	}
	h.Accounts.GetBalance(w, r, params)
}

func (h *ApiHandler) CreateTransfer(w http.ResponseWriter, r *http.Request, params api.CreateTransferParams) {
	if h.Transfers == nil {
		api.Unimplemented{}.CreateTransfer(w, r, params)
		return
	}
	h.Transfers.CreateTransfer(w, r, params)
}

func (h *ApiHandler) GetTransferById(w http.ResponseWriter, r *http.Request, transferId openapi_types.UUID, params api.GetTransferByIdParams) {
	if h.Transfers == nil {
		api.Unimplemented{}.GetTransferById(w, r, transferId, params)
		return
	}
	h.Transfers.GetTransferById(w, r, transferId, params)
}
