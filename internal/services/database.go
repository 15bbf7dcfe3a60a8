package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// DatabaseService stores transactions in Azure Table Storage.
//
// Each entity lives in the partition of its owner (PartitionKey = owner id,
// RowKey = transaction id), so owner-scoped writes are addressed by both keys
// and can never reach another owner's document.
type DatabaseService struct {
	serviceClient     *aztables.ServiceClient
	transactionsTable string
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService(tableURL, transactionsTable string) (*DatabaseService, error) {
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL environment variable is required")
	}
	if transactionsTable == "" {
		transactionsTable = "transactions"
	}

	var client *aztables.ServiceClient

	// Check if running locally with Azurite (http endpoint)
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for database service")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		// Production: Managed Identity
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient:     client,
		transactionsTable: transactionsTable,
	}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully",
		"table_url", tableURL,
		"transactions_table", transactionsTable,
	)
	return svc, nil
}

// CreateTables ensures the transactions table exists.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	_, err := s.serviceClient.CreateTable(ctx, s.transactionsTable, nil)
	if err != nil {
		// Ignore error if table already exists
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", s.transactionsTable, err)
	}
	return nil
}

func (s *DatabaseService) getClient() *aztables.Client {
	return s.serviceClient.NewClient(s.transactionsTable)
}

// ListByOwner returns every transaction in the owner's partition.
func (s *DatabaseService) ListByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", escapeODataString(ownerID))
	return s.query(ctx, filter, nil)
}

// Get looks a transaction up by id across partitions.
func (s *DatabaseService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	filter := fmt.Sprintf("RowKey eq '%s'", escapeODataString(id))
	top := int32(1)
	found, err := s.query(ctx, filter, &top)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, models.ErrNotFound
	}
	return &found[0], nil
}

// Insert adds a new entity with a generated id.
func (s *DatabaseService) Insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	t.ID = uuid.New().String()

	entityJson, err := json.Marshal(toEntity(t))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to marshal entity: %w", err)
	}
	if _, err := s.getClient().AddEntity(ctx, entityJson, nil); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to add entity: %w", err)
	}
	return t, nil
}

// UpdateOwned replaces the entity at (ownerID, t.ID). Replace requires the
// entity to exist, so a missing or foreign document yields ErrNotFound.
func (s *DatabaseService) UpdateOwned(ctx context.Context, ownerID string, t models.Transaction) error {
	t.OwnerID = ownerID
	entityJson, err := json.Marshal(toEntity(t))
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	_, err = s.getClient().UpdateEntity(ctx, entityJson, &aztables.UpdateEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	})
	if isNotFound(err) {
		return models.ErrNotFound
	}
	return err
}

// DeleteOwned deletes the entity at (ownerID, id).
func (s *DatabaseService) DeleteOwned(ctx context.Context, ownerID, id string) error {
	_, err := s.getClient().DeleteEntity(ctx, ownerID, id, nil)
	if isNotFound(err) {
		return models.ErrNotFound
	}
	return err
}

// Close is a no-op; the SDK client holds no connection to release.
func (s *DatabaseService) Close() error {
	return nil
}

func (s *DatabaseService) query(ctx context.Context, filter string, top *int32) ([]models.Transaction, error) {
	pager := s.getClient().NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
		Top:    top,
	})

	transactions := []models.Transaction{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities: %w", err)
		}

		for _, entity := range resp.Entities {
			var parsed map[string]any
			if err := json.Unmarshal(entity, &parsed); err != nil {
				slog.Warn("skipping unreadable transaction entity", "error", err)
				continue
			}
			transactions = append(transactions, fromEntity(parsed))
		}

		if top != nil && len(transactions) >= int(*top) {
			break
		}
	}
	return transactions, nil
}

// toEntity maps a transaction to a table entity. Amount is stored as a
// string to keep exact cents.
func toEntity(t models.Transaction) map[string]any {
	return map[string]any{
		"PartitionKey": t.OwnerID,
		"RowKey":       t.ID,
		"Type":         string(t.Type),
		"Amount":       t.Amount.String(),
		"Category":     string(t.Category),
		"Description":  t.Description,
		"Date":         t.Date,
		"CreatedAt":    t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromEntity(parsed map[string]any) models.Transaction {
	getString := func(key string) string {
		if v, ok := parsed[key].(string); ok {
			return v
		}
		return ""
	}

	getDecimal := func(key string) decimal.Decimal {
		if v, ok := parsed[key].(string); ok {
			d, _ := decimal.NewFromString(v)
			return d
		}
		if v, ok := parsed[key].(float64); ok {
			return decimal.NewFromFloat(v)
		}
		return decimal.Zero
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, getString("CreatedAt"))

	return models.Transaction{
		ID:          getString("RowKey"),
		OwnerID:     getString("PartitionKey"),
		Type:        models.TransactionType(getString("Type")),
		Amount:      getDecimal("Amount"),
		Category:    models.Category(getString("Category")),
		Description: getString("Description"),
		Date:        getString("Date"),
		CreatedAt:   createdAt,
	}
}

// escapeODataString doubles single quotes for use inside an OData literal.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func isNotFound(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound
}
