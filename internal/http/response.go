package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"donoboard/internal/core"
)

// OperationResult is the JSON confirmation relayed back to the requester of
// an admin command.
type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeResult(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, OperationResult{Success: true, Message: message})
}

// writeOperationError maps domain errors onto status codes: validation
// problems are the requester's fault, storage failures are ours.
func writeOperationError(w http.ResponseWriter, err error) {
	var storageErr *core.StorageError
	switch {
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrUnknownTarget):
		writeJSON(w, http.StatusUnprocessableEntity, OperationResult{Success: false, Error: err.Error()})
	case errors.As(err, &storageErr):
		writeJSON(w, http.StatusInternalServerError, OperationResult{Success: false, Error: "ledger store unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, OperationResult{Success: false, Error: "internal error"})
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.ErrorContext(r.Context(), "Failed to decode request body",
			"error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, OperationResult{Success: false, Error: "malformed request body"})
		return false
	}
	return true
}
