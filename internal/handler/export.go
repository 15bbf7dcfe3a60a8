package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sungenyeint/money-tracker/internal/aggregate"
	"github.com/sungenyeint/money-tracker/internal/csvparse"
)

// HandleExport streams the caller's (filtered) transactions as CSV, newest first.
func (d *Dependencies) HandleExport(w http.ResponseWriter, r *http.Request) {
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
	filtered := aggregate.Filter(transactions, criteria)
	rows := aggregate.Recent(filtered, len(filtered))

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)

	if err := csvparse.WriteCSV(w, rows); err != nil {
		// Headers are already sent; all that is left is to record it.
		slog.Error("failed to write CSV export", "owner_id", ownerID(r), "error", err)
		return
	}
	slog.Info("exported transactions", "owner_id", ownerID(r), "count", len(rows))
}
