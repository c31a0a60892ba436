package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/google/uuid"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]*domain.Order)}
}

// Save stores a copy of the order, assigning an ID on first save. Order numbers
// are unique across stored orders.
func (r *Repository) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, stored := range r.orders {
		if stored.OrderNumber == order.OrderNumber && id != order.ID {
			return fmt.Errorf("order #%d: %w", order.OrderNumber, ports.ErrDuplicateOrderNumber)
		}
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// List returns orders respecting the provided filter, ordered by order number.
// Pagination is 1-based; a zero page size returns every match.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Status != nil && order.Status() != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderNumber < result[j].OrderNumber
	})

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(result) {
			return []*domain.Order{}, nil
		}
		end := min(start+filter.PageSize, len(result))
		result = result[start:end]
	}

	out := make([]*domain.Order, len(result))
	for i, order := range result {
		out[i] = order.Clone()
	}
	return out, nil
}

// Delete removes an order.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// NextOrderNumber returns one more than the highest stored order number.
func (r *Repository) NextOrderNumber(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	highest := 0
	for _, order := range r.orders {
		highest = max(highest, order.OrderNumber)
	}
	return highest + 1, nil
}
