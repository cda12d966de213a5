package catalog

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Store persists the last fetched catalog so a fresh engine can start warm.
// Load returns an error matching apperrors.ErrNotFound when nothing is stored.
type Store interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, products []domain.Product) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the snapshot in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	products []domain.Product
	saved    bool
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return nil, apperrors.NotFound("catalog snapshot", "memory")
	}
	return clone(s.products), nil
}

func (s *MemoryStore) Save(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = clone(products)
	s.saved = true
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil
	s.saved = false
	return nil
}

func clone(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out
}
