package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sungenyeint/money-tracker/internal/auth"
)

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	assert.NoError(t, err)
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func importDeps(blob *MockBlobClient, queue *MockQueueClient) *Dependencies {
	return &Dependencies{
		Ledger:          &MockLedger{},
		Blob:            blob,
		Queue:           queue,
		ImportContainer: "imports",
		ImportQueue:     "import-queue",
	}
}

func TestHandleImport_Success(t *testing.T) {
	// Setup
	mockBlob := &MockBlobClient{}
	mockQueue := &MockQueueClient{}
	deps := importDeps(mockBlob, mockQueue)

	body, contentType := multipartUpload(t, "file", "test.csv", "content")

	var uploaded string
	mockBlob.UploadTextFunc = func(ctx context.Context, containerName, blobName, content string) error {
		assert.Equal(t, "imports", containerName)
		assert.True(t, strings.HasPrefix(blobName, "uploads/u1/"))
		// The filename is modified with a timestamp, so just check suffix
		assert.True(t, strings.HasSuffix(blobName, "-test.csv"))
		assert.Equal(t, "content", content)
		uploaded = blobName
		return nil
	}

	mockQueue.EnqueueMessageFunc = func(ctx context.Context, queueName string, message any) error {
		assert.Equal(t, "import-queue", queueName)
		msg, ok := message.(ImportMessage)
		assert.True(t, ok)
		assert.Equal(t, "test.csv", msg.Filename)
		assert.Equal(t, "u1", msg.OwnerID)
		assert.Equal(t, "u1@example.com", msg.OwnerEmail)
		assert.Equal(t, uploaded, msg.BlobName)
		return nil
	}

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", body)
	req.Header.Set("Content-Type", contentType)

	// Execute
	w := serve(deps, "u1", req)

	// Assert
	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "queued", resp["status"])
	assert.Equal(t, uploaded, resp["blobName"])
}

func TestHandleImport_MissingFile(t *testing.T) {
	deps := importDeps(&MockBlobClient{}, &MockQueueClient{})
	body, contentType := multipartUpload(t, "other", "test.csv", "content")

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(deps, "u1", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleImport_EmptyFile(t *testing.T) {
	deps := importDeps(&MockBlobClient{}, &MockQueueClient{})
	body, contentType := multipartUpload(t, "file", "test.csv", "")

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(deps, "u1", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleImport_BlobError(t *testing.T) {
	mockBlob := &MockBlobClient{
		UploadTextFunc: func(ctx context.Context, containerName, blobName, content string) error {
			return errors.New("storage account unreachable")
		},
	}
	enqueued := false
	mockQueue := &MockQueueClient{
		EnqueueMessageFunc: func(ctx context.Context, queueName string, message any) error {
			enqueued = true
			return nil
		},
	}
	deps := importDeps(mockBlob, mockQueue)
	body, contentType := multipartUpload(t, "file", "test.csv", "content")

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(deps, "u1", req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "unreachable")
	assert.False(t, enqueued)
}

func TestHandleImport_Unauthenticated(t *testing.T) {
	deps := importDeps(&MockBlobClient{}, &MockQueueClient{})
	body, contentType := multipartUpload(t, "file", "test.csv", "content")

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	deps.HandleImport(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, ok := auth.FromContext(req.Context())
	assert.False(t, ok)
}

func TestRoutes_ImportDisabledWithoutStorage(t *testing.T) {
	deps := &Dependencies{Ledger: &MockLedger{}}

	w := serve(deps, "u1", httptest.NewRequest(http.MethodPost, "/api/transactions/import", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
