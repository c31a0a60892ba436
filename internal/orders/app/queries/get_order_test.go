package queries_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/orders/app/queries"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

type inMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func newInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (r *inMemoryRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *inMemoryRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, exists := r.orders[id]
	if !exists {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *inMemoryRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, order.Clone())
	}
	return orders, nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *inMemoryRepository) NextOrderNumber(ctx context.Context) (int, error) {
	return len(r.orders) + 1, nil
}

var menu = catalog.Default()

func newStoredOrder(t *testing.T, repo *inMemoryRepository, id string, number int, keys ...string) *domain.Order {
	t.Helper()
	order := domain.NewOrder(number, domain.DefaultDiscountPerCup, time.Now().UTC())
	order.ID = id
	for _, key := range keys {
		entry, err := menu.Lookup(key)
		if err != nil {
			t.Fatalf("lookup %s: %v", key, err)
		}
		order.AddItem(domain.NewItem(entry))
	}
	if err := repo.Save(context.Background(), order); err != nil {
		t.Fatalf("failed to save order %s: %v", id, err)
	}
	return order
}

func TestGetOrder(t *testing.T) {
	t.Run("returns order by ID", func(t *testing.T) {
		repo := newInMemoryRepository()
		handler := queries.NewGetOrderQueryHandler(repo)
		ctx := context.Background()

		expected := newStoredOrder(t, repo, "test-order-123", 5, "kenya", "cookie")

		result, err := handler.Handle(ctx, queries.GetOrderQuery{OrderID: "test-order-123"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result == nil {
			t.Fatal("expected order to be returned, got nil")
		}

		if result.ID != expected.ID {
			t.Errorf("expected ID %s, got %s", expected.ID, result.ID)
		}

		if result.OrderNumber != expected.OrderNumber {
			t.Errorf("expected number %d, got %d", expected.OrderNumber, result.OrderNumber)
		}

		if result.Total() != expected.Total() {
			t.Errorf("expected total %d, got %d", expected.Total(), result.Total())
		}
	})

	t.Run("returns not found error for nonexistent order", func(t *testing.T) {
		repo := newInMemoryRepository()
		handler := queries.NewGetOrderQueryHandler(repo)

		result, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "nonexistent-order"})

		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if result != nil {
			t.Errorf("expected nil result, got %+v", result)
		}
	})

	t.Run("returns order by number", func(t *testing.T) {
		repo := newInMemoryRepository()
		handler := queries.NewGetOrderQueryHandler(repo)

		newStoredOrder(t, repo, "order-1", 1, "houseBlend")
		expected := newStoredOrder(t, repo, "order-2", 2, "kenya")

		result, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderNumber: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.ID != expected.ID {
			t.Errorf("expected order %s, got %s", expected.ID, result.ID)
		}
	})

	t.Run("returns not found for an unknown number", func(t *testing.T) {
		repo := newInMemoryRepository()
		newStoredOrder(t, repo, "order-1", 1, "houseBlend")

		_, err := queries.NewGetOrderQueryHandler(repo).Handle(context.Background(), queries.GetOrderQuery{OrderNumber: 9})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("retrieves correct order from multiple orders", func(t *testing.T) {
		repo := newInMemoryRepository()
		handler := queries.NewGetOrderQueryHandler(repo)
		ctx := context.Background()

		stored := []*domain.Order{
			newStoredOrder(t, repo, "order-1", 1, "houseBlend"),
			newStoredOrder(t, repo, "order-2", 2, "kenya", "kenya"),
			newStoredOrder(t, repo, "order-3", 3, "toteSet"),
		}

		for _, expected := range stored {
			result, err := handler.Handle(ctx, queries.GetOrderQuery{OrderID: expected.ID})
			if err != nil {
				t.Errorf("failed to get order %s: %v", expected.ID, err)
				continue
			}

			if result.OrderNumber != expected.OrderNumber {
				t.Errorf("expected number %d, got %d", expected.OrderNumber, result.OrderNumber)
			}
		}
	})
}

func TestGetOrderQueryValidation(t *testing.T) {
	tests := []struct {
		name    string
		query   queries.GetOrderQuery
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid order ID",
			query:   queries.GetOrderQuery{OrderID: "order-123"},
			wantErr: false,
		},
		{
			name:    "empty order ID",
			query:   queries.GetOrderQuery{OrderID: ""},
			wantErr: true,
			errMsg:  "order_id is required",
		},
		{
			name:    "whitespace order ID",
			query:   queries.GetOrderQuery{OrderID: "  \t  "},
			wantErr: true,
			errMsg:  "order_id is required",
		},
		{
			name:    "valid order number",
			query:   queries.GetOrderQuery{OrderNumber: 12},
			wantErr: false,
		},
		{
			name:    "negative order number",
			query:   queries.GetOrderQuery{OrderNumber: -1},
			wantErr: true,
			errMsg:  "order_number must be positive",
		},
		{
			name:    "both ID and number",
			query:   queries.GetOrderQuery{OrderID: "order-123", OrderNumber: 12},
			wantErr: true,
			errMsg:  "order_id and order_number are mutually exclusive",
		},
		{
			name:    "valid UUID order ID",
			query:   queries.GetOrderQuery{OrderID: "550e8400-e29b-41d4-a716-446655440000"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if err.Error() != tt.errMsg {
					t.Errorf("expected error message %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			}
		})
	}
}
