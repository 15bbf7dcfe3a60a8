package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// MemoryStore keeps transactions in process memory. It is meant for local
// development and tests; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.Transaction
	order []string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]models.Transaction)}
}

// ListByOwner returns the owner's transactions in insertion order.
func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Transaction{}
	for _, id := range s.order {
		if t := s.items[id]; t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns the transaction with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

// Insert stores t under a new id.
func (s *MemoryStore) Insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.New().String()
	s.items[t.ID] = t
	s.order = append(s.order, t.ID)
	return t, nil
}

// UpdateOwned replaces the stored transaction when it belongs to ownerID.
func (s *MemoryStore) UpdateOwned(ctx context.Context, ownerID string, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[t.ID]
	if !ok || existing.OwnerID != ownerID {
		return models.ErrNotFound
	}
	t.OwnerID = existing.OwnerID
	t.CreatedAt = existing.CreatedAt
	s.items[t.ID] = t
	return nil
}

// DeleteOwned removes the transaction when it belongs to ownerID.
func (s *MemoryStore) DeleteOwned(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok || existing.OwnerID != ownerID {
		return models.ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
