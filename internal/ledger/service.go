// Package ledger mediates every read and write of transactions and enforces
// that a transaction is only visible to, and changeable by, its owner.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sungenyeint/money-tracker/internal/models"
)

// Store is the persistence contract the service relies on.
//
// UpdateOwned and DeleteOwned must only touch a document whose owner equals
// ownerID, and return models.ErrNotFound when no such document exists.
type Store interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error)
	Get(ctx context.Context, id string) (*models.Transaction, error)
	Insert(ctx context.Context, t models.Transaction) (models.Transaction, error)
	UpdateOwned(ctx context.Context, ownerID string, t models.Transaction) error
	DeleteOwned(ctx context.Context, ownerID, id string) error
}

// Service is the access-controlled transaction service.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for createdAt and date checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every transaction owned by ownerID, in store order.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	if ownerID == "" {
		return nil, models.ErrUnauthenticated
	}

	transactions, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// Get returns a single transaction owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// Create validates fields and stores a new transaction for ownerID.
// ownerId and createdAt are always assigned here.
func (s *Service) Create(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error) {
	if ownerID == "" {
		return nil, models.ErrUnauthenticated
	}

	if verr := fields.RequireAll(); verr.HasErrors() {
		return nil, verr
	}

	now := s.now().UTC()
	t := models.Transaction{OwnerID: ownerID}
	fields.ApplyTo(&t)
	if verr := t.Validate(now); verr.HasErrors() {
		return nil, verr
	}
	t.CreatedAt = now

	created, err := s.store.Insert(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	slog.Info("transaction created", "owner_id", ownerID, "transaction_id", created.ID, "type", created.Type)
	return &created, nil
}

// Update merges the supplied fields into the transaction id owned by
// ownerID and returns the merged record.
func (s *Service) Update(ctx context.Context, ownerID, id string, fields models.TransactionFields) (*models.Transaction, error) {
	existing, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	fields.ApplyTo(&merged)
	if verr := merged.Validate(s.now().UTC()); verr.HasErrors() {
		return nil, verr
	}

	// The write is conditioned on the owner as well, so a document whose
	// owner no longer matches is never touched.
	if err := s.store.UpdateOwned(ctx, ownerID, merged); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update transaction %s: %w", id, err)
	}

	slog.Info("transaction updated", "owner_id", ownerID, "transaction_id", id)
	return &merged, nil
}

// Delete permanently removes the transaction id owned by ownerID.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return "", err
	}

	if err := s.store.DeleteOwned(ctx, ownerID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}

	slog.Info("transaction deleted", "owner_id", ownerID, "transaction_id", id)
	return id, nil
}

// loadOwned fetches id and checks that ownerID owns it.
func (s *Service) loadOwned(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	if ownerID == "" {
		return nil, models.ErrUnauthenticated
	}
	if id == "" {
		return nil, models.ErrNotFound
	}

	t, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	if t.OwnerID != ownerID {
		slog.Warn("transaction access denied", "owner_id", ownerID, "transaction_id", id)
		return nil, models.ErrForbidden
	}
	return t, nil
}
