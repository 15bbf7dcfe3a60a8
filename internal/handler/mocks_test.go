package handler

import (
	"context"

	"github.com/sungenyeint/money-tracker/internal/models"
	"github.com/sungenyeint/money-tracker/internal/services"
)

// MockLedger is a mock implementation of LedgerService
type MockLedger struct {
	ListFunc   func(ctx context.Context, ownerID string) ([]models.Transaction, error)
	GetFunc    func(ctx context.Context, ownerID, id string) (*models.Transaction, error)
	CreateFunc func(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error)
	UpdateFunc func(ctx context.Context, ownerID, id string, fields models.TransactionFields) (*models.Transaction, error)
	DeleteFunc func(ctx context.Context, ownerID, id string) (string, error)
}

func (m *MockLedger) List(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID)
	}
	return []models.Transaction{}, nil
}

func (m *MockLedger) Get(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockLedger) Create(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, fields)
	}
	return &models.Transaction{}, nil
}

func (m *MockLedger) Update(ctx context.Context, ownerID, id string, fields models.TransactionFields) (*models.Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, id, fields)
	}
	return &models.Transaction{}, nil
}

func (m *MockLedger) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return id, nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, containerName, blobName, content string) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
	DeleteBlobFunc   func(ctx context.Context, containerName, blobName string) error
}

func (m *MockBlobClient) UploadText(ctx context.Context, containerName, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, containerName, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

func (m *MockBlobClient) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	if m.DeleteBlobFunc != nil {
		return m.DeleteBlobFunc(ctx, containerName, blobName)
	}
	return nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendImportReportFunc func(ctx context.Context, recipients []string, report services.ImportReport) error
}

func (m *MockEmailClient) SendImportReport(ctx context.Context, recipients []string, report services.ImportReport) error {
	if m.SendImportReportFunc != nil {
		return m.SendImportReportFunc(ctx, recipients, report)
	}
	return nil
}
