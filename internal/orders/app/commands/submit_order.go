package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

var (
	// ErrValidation marks commands rejected before touching storage.
	ErrValidation = errors.New("validation failed")
	// ErrDiscountUnavailable is returned when the requested anchor order cannot
	// back a discount.
	ErrDiscountUnavailable = errors.New("discount anchor unavailable")
	// ErrPublishFailed is returned alongside a saved order whose notification
	// could not be delivered.
	ErrPublishFailed = errors.New("order saved but failed to publish event")
)

// maxNumberAttempts bounds retries when a concurrent submission takes the
// allocated order number first.
const maxNumberAttempts = 32

type SubmitOrderCommand struct {
	ItemKeys        []string
	ReceivedAmount  int
	DiscountAnchor  *int
	EstimateSeconds int
	Comment         string
}

func (c SubmitOrderCommand) Validate() error {
	if len(c.ItemKeys) == 0 {
		return fmt.Errorf("%w: items are required", ErrValidation)
	}
	if c.ReceivedAmount < 0 {
		return fmt.Errorf("%w: received_amount must not be negative", ErrValidation)
	}
	if c.EstimateSeconds < 0 {
		return fmt.Errorf("%w: estimate_seconds must not be negative", ErrValidation)
	}
	if c.DiscountAnchor != nil && *c.DiscountAnchor <= 0 {
		return fmt.Errorf("%w: discount_anchor must be positive", ErrValidation)
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd SubmitOrderCommand) (*domain.Order, error)
}

type SubmitOrderCommandHandler struct {
	repo           ports.OrderRepository
	events         ports.EventBus
	menu           *catalog.Catalog
	discountPerCup int
	now            func() time.Time
}

func NewSubmitOrderCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	menu *catalog.Catalog,
	discountPerCup int,
	now func() time.Time,
) *SubmitOrderCommandHandler {
	if now == nil {
		now = Clock(nil)
	}
	return &SubmitOrderCommandHandler{
		repo:           repo,
		events:         events,
		menu:           menu,
		discountPerCup: discountPerCup,
		now:            now,
	}
}

func (h *SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, err := ResolveItems(h.menu, cmd.ItemKeys)
	if err != nil {
		return nil, err
	}

	var anchor *domain.Order
	if cmd.DiscountAnchor != nil {
		anchor, err = FindAnchor(ctx, h.repo, *cmd.DiscountAnchor, "")
		if err != nil {
			return nil, err
		}
	}

	var order *domain.Order
	for attempt := 1; ; attempt++ {
		number, err := h.repo.NextOrderNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocate order number: %w", err)
		}

		order = h.buildOrder(number, items, anchor, cmd)
		err = h.repo.Save(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, ports.ErrDuplicateOrderNumber) || attempt == maxNumberAttempts {
			return nil, fmt.Errorf("save order: %w", err)
		}
	}

	if err := h.events.PublishOrderSubmitted(ctx, order); err != nil {
		return order, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return order, nil
}

// Clock returns now truncated to microseconds, the precision Postgres keeps for
// timestamps, so stored instants read back unchanged. A nil now means time.Now in UTC.
func Clock(now func() time.Time) func() time.Time {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return func() time.Time { return now().Truncate(time.Microsecond) }
}

func (h *SubmitOrderCommandHandler) buildOrder(number int, items []domain.Item, anchor *domain.Order, cmd SubmitOrderCommand) *domain.Order {
	order := domain.NewOrder(number, h.discountPerCup, h.now())
	for _, item := range items {
		order.AddItem(item)
	}
	if anchor != nil {
		order.ApplyDiscount(anchor)
	}
	order.SetReceivedAmount(cmd.ReceivedAmount)
	order.SetEstimate(cmd.EstimateSeconds)
	order.RefreshCreatedAt(h.now())
	order.AddComment(domain.AuthorCashier, cmd.Comment, order.CreatedAt)
	return order
}

// ResolveItems turns catalog keys into unassigned items, in key order.
func ResolveItems(menu *catalog.Catalog, keys []string) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(keys))
	for _, key := range keys {
		entry, err := menu.Lookup(key)
		if err != nil {
			return nil, fmt.Errorf("resolve item: %w", err)
		}
		items = append(items, domain.NewItem(entry))
	}
	return items, nil
}

// FindAnchor loads every order, checks that number may anchor a discount for the
// order identified by claimantID, and returns the anchor. An empty claimantID is
// used for orders not yet stored.
func FindAnchor(ctx context.Context, repo ports.OrderRepository, number int, claimantID string) (*domain.Order, error) {
	all, err := repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	others := make([]*domain.Order, 0, len(all))
	for _, o := range all {
		if claimantID != "" && o.ID == claimantID {
			continue
		}
		others = append(others, o)
	}

	if eligibility := domain.ResolveAnchorEligibility(number, others); eligibility != domain.EligibilityAvailable {
		return nil, fmt.Errorf("%w: order %d is %s", ErrDiscountUnavailable, number, eligibility)
	}

	for _, o := range others {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: order %d not found", ErrDiscountUnavailable, number)
}
