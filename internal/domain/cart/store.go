package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// ErrNoCart is returned by Store.Load when nothing has been saved yet.
var ErrNoCart = errors.New("no saved cart")

// Store is a durable slot for one serialized cart.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// MemoryStore keeps the serialized cart in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, ErrNoCart
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemoryStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	return nil
}

// MemoryStores hands out one MemoryStore per session cart id. Carts are lost
// on restart.
type MemoryStores struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryStores returns an empty MemoryStores.
func NewMemoryStores() *MemoryStores {
	return &MemoryStores{stores: make(map[string]*MemoryStore)}
}

// For returns the slot of cartID, creating it on first use.
func (m *MemoryStores) For(cartID string) Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stores[cartID]
	if !ok {
		s = NewMemoryStore()
		m.stores[cartID] = s
	}
	return s
}
