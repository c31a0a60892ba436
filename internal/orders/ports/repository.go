package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/cafepos/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	// Save inserts or replaces the order. An order without an ID is given one.
	// Saving a number already held by another order fails with ErrDuplicateOrderNumber.
	Save(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, error)
	Delete(ctx context.Context, id string) error
	// NextOrderNumber returns one more than the highest stored order number.
	NextOrderNumber(ctx context.Context) (int, error)
}

// ListFilter narrows list queries by status and pagination. A zero PageSize
// returns every matching order.
type ListFilter struct {
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrderNumber is returned when another order already holds the number.
	ErrDuplicateOrderNumber = errors.New("order number already taken")
)
