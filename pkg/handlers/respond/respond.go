package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/mapping"
	"github.com/chris/account-transfers/pkg/models"
)

// StatusFor returns the HTTP status of a rejection kind.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindUnauthorized:
		return http.StatusForbidden
	case models.KindIdempotencyMismatch:
		return http.StatusConflict
	case models.KindTransferPending:
		return http.StatusAccepted
	default:
		return http.StatusBadRequest
	}
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes a rejection as {kind, message}. Anything else is an internal
// error and is logged rather than exposed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *models.Error
	if errors.As(err, &rejection) {
		JSON(w, StatusFor(rejection.Kind), mapping.ToApiError(rejection))
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// ParamError handles malformed or missing request parameters. A request
// without an authenticated account is forbidden.
func ParamError(w http.ResponseWriter, r *http.Request, err error) {
	var missingHeader *api.RequiredHeaderError
	if errors.As(err, &missingHeader) {
		JSON(w, http.StatusForbidden, &api.Error{Kind: api.UNAUTHORIZED, Message: "missing authenticated account"})
		return
	}
	JSON(w, http.StatusBadRequest, &api.Error{Kind: api.INVALIDVALUE, Message: fmt.Sprintf("Invalid request: %v", err)})
}
