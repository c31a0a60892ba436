package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/ports"
)

// Store keeps submission responses in process memory. Entries older than ttl are
// treated as absent; a zero ttl keeps them forever.
type Store struct {
	mu    sync.RWMutex
	items map[string]ports.StoredResponse
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]ports.StoredResponse),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok || s.expired(value) {
		return nil, nil
	}
	value.Body = append([]byte(nil), value.Body...)
	return &value, nil
}

func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[key]; ok && !s.expired(existing) {
		return nil
	}
	if response.CreatedAt.IsZero() {
		response.CreatedAt = s.now()
	}
	response.Body = append([]byte(nil), response.Body...)
	s.items[key] = response
	return nil
}

func (s *Store) expired(r ports.StoredResponse) bool {
	return s.ttl > 0 && s.now().Sub(r.CreatedAt) > s.ttl
}
