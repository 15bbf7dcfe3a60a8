package handler

import (
	"net/http"

	"github.com/sungenyeint/money-tracker/internal/aggregate"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// HandleSummary returns the dashboard overview for the caller, honoring the
// same filter parameters as the transaction list.
func (d *Dependencies) HandleSummary(w http.ResponseWriter, r *http.Request) {
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

	WriteJSON(w, http.StatusOK, aggregate.Summarize(transactions, criteria))
}

// HandleMonthlySeries returns per-month income and expense totals.
// order=asc lists the oldest month first; the default is newest first.
func (d *Dependencies) HandleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := parseCriteria(q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	transactions, err := d.Ledger.List(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	series := aggregate.MonthlySeries(aggregate.Filter(transactions, criteria), aggregate.ParseOrder(q.Get("order")))
	WriteJSON(w, http.StatusOK, series)
}

// HandleCategoryBreakdown returns per-category totals and shares for one
// transaction type (expense unless type=income).
func (d *Dependencies) HandleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := parseCriteria(q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	typ := criteria.Type
	if typ == "" {
		typ = models.TypeExpense
	}
	// The breakdown already selects a type; the filter only narrows the period.
	criteria.Type = ""

	transactions, err := d.Ledger.List(r.Context(), ownerID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filtered := aggregate.Filter(transactions, criteria)
	WriteJSON(w, http.StatusOK, map[string]any{
		"type":       typ,
		"total":      aggregate.TotalsByType(filtered).For(typ),
		"categories": aggregate.BreakdownByCategory(filtered, typ),
	})
}

// HandleCategories returns the category table keyed by transaction type.
func (d *Dependencies) HandleCategories(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[models.TransactionType][]models.Category{
		models.TypeIncome:  models.CategoriesFor(models.TypeIncome),
		models.TypeExpense: models.CategoriesFor(models.TypeExpense),
	})
}
