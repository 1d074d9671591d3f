package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps carts in process memory. Carts are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]*Cart{}}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cart, ok := m.carts[sessionID]; ok {
		return cart.Clone(), nil
	}
	return NewCart(sessionID), nil
}

func (m *MemoryStore) Mutate(_ context.Context, sessionID string, fn MutateFunc) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := NewCart(sessionID)
	if existing, ok := m.carts[sessionID]; ok {
		working = existing.Clone()
	}
	if err := fn(working); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if working.CreatedAt.IsZero() {
		working.CreatedAt = now
	}
	working.UpdatedAt = now
	m.carts[sessionID] = working
	return working.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, sessionID)
	return nil
}
