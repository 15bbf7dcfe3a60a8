package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sungenyeint/money-tracker/internal/auth"
)

// maxUploadSize caps CSV import uploads.
const maxUploadSize = 10 << 20

// importPrefix is the blob prefix holding ownerID's uploads.
func importPrefix(ownerID string) string {
	return "uploads/" + ownerID + "/"
}

// ImportMessage is the queue payload describing one uploaded CSV.
type ImportMessage struct {
	BlobName   string `json:"blob_name"`
	OwnerID    string `json:"owner_id"`
	OwnerEmail string `json:"owner_email,omitempty"`
	Filename   string `json:"filename"`
}

// HandleImport stores an uploaded CSV in blob storage and queues it for
// processing under the caller's identity.
func (d *Dependencies) HandleImport(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", maxUploadSize>>20)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	if len(bytes) == 0 {
		WriteError(w, http.StatusBadRequest, "File is empty")
		return
	}
	slog.Info("received file upload", "owner_id", identity.UserID, "filename", header.Filename, "size_bytes", len(bytes))

	timestamp := time.Now().UTC().Format("20060102-150405")
	filename := filepath.Base(header.Filename)
	blobName := fmt.Sprintf("%s%s-%s", importPrefix(identity.UserID), timestamp, filename)

	if err := d.Blob.UploadText(r.Context(), d.ImportContainer, blobName, string(bytes)); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "container", d.ImportContainer, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	msg := ImportMessage{
		BlobName:   blobName,
		OwnerID:    identity.UserID,
		OwnerEmail: identity.Email,
		Filename:   filename,
	}
	if err := d.Queue.EnqueueMessage(r.Context(), d.ImportQueue, msg); err != nil {
		slog.Error("failed to enqueue message", "queue", d.ImportQueue, "filename", filename, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	slog.Info("queued import", "queue", d.ImportQueue, "owner_id", identity.UserID, "blob_name", blobName)

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"blobName": blobName,
	})
}
