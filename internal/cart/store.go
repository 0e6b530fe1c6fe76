package cart

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// Store persists one cart snapshot per session.
// Load returns an empty cart for unknown sessions.
type Store interface {
	Load(ctx context.Context, sessionID string) (models.Cart, error)
	Save(ctx context.Context, sessionID string, c models.Cart) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

// NewMemoryStore creates an empty in-memory cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]models.Cart),
	}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return Empty(), nil
	}
	return Clone(c), nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, c models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = Clone(c)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

// Len returns the number of stored carts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

func (s *MemoryStore) Close() error {
	return nil
}
