package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

// GetOrderQuery looks an order up either by ID or by the number printed on its
// receipt. Exactly one of the two must be set.
type GetOrderQuery struct {
	OrderID     string
	OrderNumber int
}

func (q GetOrderQuery) Validate() error {
	hasID := strings.TrimSpace(q.OrderID) != ""
	switch {
	case hasID && q.OrderNumber != 0:
		return errors.New("order_id and order_number are mutually exclusive")
	case q.OrderNumber < 0:
		return errors.New("order_number must be positive")
	case !hasID && q.OrderNumber == 0:
		return errors.New("order_id is required")
	}
	return nil
}

type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if query.OrderNumber == 0 {
		return h.repo.GetByID(ctx, query.OrderID)
	}

	all, err := h.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, order := range all {
		if order.OrderNumber == query.OrderNumber {
			return order, nil
		}
	}
	return nil, fmt.Errorf("order #%d: %w", query.OrderNumber, ports.ErrNotFound)
}
