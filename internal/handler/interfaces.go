package handler

import (
	"context"

	"github.com/sungenyeint/money-tracker/internal/models"
	"github.com/sungenyeint/money-tracker/internal/services"
)

// LedgerService defines the access-controlled transaction operations used by handlers.
type LedgerService interface {
	List(ctx context.Context, ownerID string) ([]models.Transaction, error)
	Get(ctx context.Context, ownerID, id string) (*models.Transaction, error)
	Create(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error)
	Update(ctx context.Context, ownerID, id string, fields models.TransactionFields) (*models.Transaction, error)
	Delete(ctx context.Context, ownerID, id string) (string, error)
}

// BlobClient defines the interface for blob storage operations used by handlers.
type BlobClient interface {
	UploadText(ctx context.Context, containerName, blobName, content string) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
	DeleteBlob(ctx context.Context, containerName, blobName string) error
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendImportReport(ctx context.Context, recipients []string, report services.ImportReport) error
}
