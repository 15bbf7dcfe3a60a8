package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/sungenyeint/money-tracker/internal/csvparse"
	"github.com/sungenyeint/money-tracker/internal/models"
	"github.com/sungenyeint/money-tracker/internal/services"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue handles the queue trigger for uploaded CSV imports. Every
// parsed row is created through the ledger as the uploader, so rows are
// subject to the same validation as interactive writes.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	var invokeReq invokeRequest
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}

	msg, err := decodeImportMessage(queueItemVal)
	if err != nil {
		slog.Error("failed to decode queueItem", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid queueItem: %v", err))
		return
	}

	if msg.BlobName == "" || msg.OwnerID == "" {
		slog.Warn("queue message missing blob_name or owner_id", "blob_name", msg.BlobName, "owner_id", msg.OwnerID)
		WriteError(w, http.StatusBadRequest, "Missing blob_name or owner_id")
		return
	}

	// Uploads are stored under uploads/<owner_id>/, so a message can only
	// import a file its owner uploaded.
	if strings.Contains(msg.OwnerID, "/") || slices.Contains(strings.Split(msg.BlobName, "/"), "..") || !strings.HasPrefix(msg.BlobName, importPrefix(msg.OwnerID)) {
		slog.Warn("queue message blob does not belong to owner", "blob_name", msg.BlobName, "owner_id", msg.OwnerID)
		WriteError(w, http.StatusBadRequest, "blob_name does not belong to owner_id")
		return
	}

	slog.Info("processing queue item", "blob_name", msg.BlobName, "owner_id", msg.OwnerID, "container", d.ImportContainer)

	csvContent, err := d.Blob.DownloadText(r.Context(), d.ImportContainer, msg.BlobName)
	if err != nil {
		slog.Error("failed to download CSV from blob", "blob_name", msg.BlobName, "container", d.ImportContainer, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download CSV: %v", err))
		return
	}

	rows, rowErrors := csvparse.ParseCSV(csvContent)
	slog.Info("parsed CSV content", "blob_name", msg.BlobName, "rows_count", len(rows), "errors_count", len(rowErrors))

	created := 0
	for _, row := range rows {
		if _, err := d.Ledger.Create(r.Context(), msg.OwnerID, row.TransactionFields); err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s", row.Line, describeRowError(err)))
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				slog.Error("failed to create imported transaction", "blob_name", msg.BlobName, "row", row.Line, "error", err)
			}
			continue
		}
		created++
	}

	// Consume the message even when rows fail, so it doesn't retry forever
	// and re-create the rows that did succeed.
	if err := d.Blob.DeleteBlob(r.Context(), d.ImportContainer, msg.BlobName); err != nil {
		slog.Warn("failed to delete processed blob", "blob_name", msg.BlobName, "error", err)
	}

	if len(rowErrors) > 0 {
		d.sendImportReport(r, msg, created, rowErrors)
	}

	slog.Info("queue processing complete", "blob_name", msg.BlobName, "owner_id", msg.OwnerID, "created_count", created, "skipped_count", len(rowErrors))
	w.WriteHeader(http.StatusOK)
}

// decodeImportMessage accepts the queue item either as a JSON string or as an
// object already decoded by the host.
func decodeImportMessage(item any) (ImportMessage, error) {
	var raw []byte
	switch v := item.(type) {
	case string:
		raw = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return ImportMessage{}, err
		}
		raw = b
	default:
		return ImportMessage{}, fmt.Errorf("queueItem has unexpected type %T", item)
	}

	var msg ImportMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ImportMessage{}, err
	}
	return msg, nil
}

func (d *Dependencies) sendImportReport(r *http.Request, msg ImportMessage, created int, rowErrors []string) {
	if d.Email == nil || msg.OwnerEmail == "" {
		slog.Info("skipping import report email", "blob_name", msg.BlobName, "has_email_client", d.Email != nil)
		return
	}

	report := services.ImportReport{Filename: msg.Filename, Created: created, Errors: rowErrors}
	if err := d.Email.SendImportReport(r.Context(), []string{msg.OwnerEmail}, report); err != nil {
		slog.Error("failed to send import report", "blob_name", msg.BlobName, "error", err)
		return
	}
	slog.Info("sent import report", "blob_name", msg.BlobName, "errors_count", len(rowErrors))
}

// describeRowError renders a ledger error for the import report. Store
// failures are not described in detail.
func describeRowError(err error) string {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return "could not be saved"
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+verr.Fields[field])
	}
	return strings.Join(parts, ", ")
}
