package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sungenyeint/money-tracker/internal/aggregate"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// HandleListTransactions returns the caller's transactions, optionally
// narrowed by the year, month, type and category query parameters.
func (d *Dependencies) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	transactions, err := d.Ledger.List(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, aggregate.Filter(transactions, criteria))
}

// HandleCreateTransaction stores a new transaction for the caller.
func (d *Dependencies) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	created, err := d.Ledger.Create(r.Context(), ownerID(r), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// HandleGetTransaction returns one of the caller's transactions.
func (d *Dependencies) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := d.Ledger.Get(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, t)
}

// HandleUpdateTransaction applies a partial update to one of the caller's
// transactions. PUT and PATCH behave the same.
func (d *Dependencies) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	updated, err := d.Ledger.Update(r.Context(), ownerID(r), r.PathValue("id"), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// HandleDeleteTransaction permanently removes one of the caller's transactions.
func (d *Dependencies) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := d.Ledger.Delete(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

// decodeFields reads the request body into TransactionFields. Unknown keys,
// including the server-assigned id, ownerId and createdAt, are ignored.
func decodeFields(w http.ResponseWriter, r *http.Request) (models.TransactionFields, bool) {
	var fields models.TransactionFields
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return fields, false
		}
		slog.Warn("failed to decode transaction body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return fields, false
	}
	return fields, true
}

// parseCriteria reads filter options from query parameters. Invalid values
// are reported as a validation error.
func parseCriteria(q url.Values) (aggregate.Criteria, error) {
	var c aggregate.Criteria
	verr := &models.ValidationError{}

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			verr.Add("year", "must be a positive integer")
		}
		c.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			verr.Add("month", "must be between 1 and 12")
		}
		c.Month = month
	}
	if v := q.Get("type"); v != "" {
		c.Type = models.TransactionType(v)
		if !c.Type.Valid() {
			verr.Add("type", "must be income or expense")
		}
	}
	if v := q.Get("category"); v != "" {
		c.Category = models.Category(v)
	}

	return c, verr.OrNil()
}
