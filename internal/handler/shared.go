package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sungenyeint/money-tracker/internal/auth"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// maxJSONBody caps transaction request bodies.
const maxJSONBody = 1 << 20

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Ledger LedgerService
	Blob   BlobClient
	Queue  QueueClient
	Email  EmailClient

	ImportContainer string
	ImportQueue     string
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// writeServiceError maps ledger errors to HTTP responses. Unclassified errors
// are logged and answered with an opaque message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, models.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// ownerID returns the verified caller id, or "" when the request carries none.
// The ledger rejects an empty owner as unauthenticated.
func ownerID(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}
