package handler

import (
	"log/slog"
	"net/http"
	"strings"
)

// Routes registers every endpoint on a new mux. authenticate guards the
// /api routes that act on behalf of a user; the Functions host triggers and
// the health check are left open.
func (d *Dependencies) Routes(authenticate func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	api := func(h http.HandlerFunc) http.Handler {
		return authenticate(h)
	}

	mux.Handle("GET /api/transactions", api(d.HandleListTransactions))
	mux.Handle("POST /api/transactions", api(d.HandleCreateTransaction))
	mux.Handle("GET /api/transactions/export", api(d.HandleExport))
	mux.Handle("GET /api/transactions/{id}", api(d.HandleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", api(d.HandleUpdateTransaction))
	mux.Handle("PATCH /api/transactions/{id}", api(d.HandleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", api(d.HandleDeleteTransaction))

	mux.Handle("GET /api/summary", api(d.HandleSummary))
	mux.Handle("GET /api/summary/monthly", api(d.HandleMonthlySeries))
	mux.Handle("GET /api/summary/categories", api(d.HandleCategoryBreakdown))
	mux.HandleFunc("GET /api/categories", d.HandleCategories)

	if d.Blob != nil && d.Queue != nil {
		mux.Handle("POST /api/transactions/import", api(d.HandleImport))
		// Called by the Functions host, not by clients; the host's method is
		// not guaranteed, so any method is accepted. /HttpTrigger refuses to
		// forward here.
		mux.HandleFunc("/ProcessQueue", d.ProcessQueue)
	}

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", d.HandleHttpTrigger(mux))

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make([]string, 0, len(r.Header))
		for k := range r.Header {
			headers = append(headers, k)
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"header_names", strings.Join(headers, ","),
			"content_length", r.ContentLength,
		)
		WriteError(w, http.StatusNotFound, "not found")
	})

	return mux
}
