package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

// CheckDiscountQuery asks whether OrderNumber can anchor a discount. ClaimantID,
// when set, names the order that would hold the discount.
type CheckDiscountQuery struct {
	OrderNumber int
	ClaimantID  string
}

func (q CheckDiscountQuery) Validate() error {
	if q.OrderNumber <= 0 {
		return errors.New("order_number must be positive")
	}
	return nil
}

type CheckDiscountQueryHandler struct {
	repo ports.OrderRepository
}

func NewCheckDiscountQueryHandler(repo ports.OrderRepository) *CheckDiscountQueryHandler {
	return &CheckDiscountQueryHandler{repo: repo}
}

func (h *CheckDiscountQueryHandler) Handle(ctx context.Context, query CheckDiscountQuery) (domain.Eligibility, error) {
	if err := query.Validate(); err != nil {
		return "", err
	}

	all, err := h.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return "", fmt.Errorf("list orders: %w", err)
	}

	others := make([]*domain.Order, 0, len(all))
	for _, o := range all {
		if query.ClaimantID != "" && o.ID == query.ClaimantID {
			continue
		}
		others = append(others, o)
	}

	return domain.ResolveAnchorEligibility(query.OrderNumber, others), nil
}
