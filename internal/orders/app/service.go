package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/orders/app/commands"
	"github.com/dejobratic/cafepos/internal/orders/app/queries"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/metrics"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

var (
	// ErrDiscountUnavailable is returned when an anchor order cannot back a discount.
	ErrDiscountUnavailable = commands.ErrDiscountUnavailable
	// ErrValidation is returned for malformed input.
	ErrValidation = commands.ErrValidation
)

// Options tunes pricing and time for the service.
type Options struct {
	DiscountPerCup int
	Now            func() time.Time
}

// Service bundles use cases for the register, the brewing station and the counter.
type Service struct {
	repo      ports.OrderRepository
	events    ports.EventBus
	idemStore ports.IdempotencyStore
	printer   ports.ReceiptPrinter
	menu      *catalog.Catalog
	splitter  *domain.Splitter
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	submitOrderHandler   commands.CommandHandler
	getOrderHandler      *queries.GetOrderQueryHandler
	checkDiscountHandler *queries.CheckDiscountQueryHandler
	statusBoardHandler   *queries.StatusBoardQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	printer ports.ReceiptPrinter,
	menu *catalog.Catalog,
	opts Options,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	opts.Now = commands.Clock(opts.Now)
	if opts.DiscountPerCup == 0 {
		opts.DiscountPerCup = domain.DefaultDiscountPerCup
	}

	coreHandler := commands.NewSubmitOrderCommandHandler(repo, events, menu, opts.DiscountPerCup, opts.Now)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		repo:                 repo,
		events:               events,
		idemStore:            idem,
		printer:              printer,
		menu:                 menu,
		splitter:             domain.NewSplitter(menu),
		logger:               logger,
		metrics:              metrics,
		now:                  opts.Now,
		submitOrderHandler:   observableHandler,
		getOrderHandler:      queries.NewGetOrderQueryHandler(repo),
		checkDiscountHandler: queries.NewCheckDiscountQueryHandler(repo),
		statusBoardHandler:   queries.NewStatusBoardQueryHandler(repo),
	}
}

// SubmitOrderInput captures the register payload for a new order.
type SubmitOrderInput struct {
	Items           []string `json:"items"`
	ReceivedAmount  int      `json:"received_amount"`
	DiscountAnchor  *int     `json:"discount_anchor_order_number"`
	EstimateSeconds int      `json:"estimate_seconds"`
	Comment         string   `json:"comment"`
}

// SubmitOrder builds, prices and stores an order, then notifies subscribers. A
// failed notification is logged and does not fail the submission.
func (s *Service) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*domain.Order, error) {
	cmd := commands.SubmitOrderCommand{
		ItemKeys:        input.Items,
		ReceivedAmount:  input.ReceivedAmount,
		DiscountAnchor:  input.DiscountAnchor,
		EstimateSeconds: input.EstimateSeconds,
		Comment:         input.Comment,
	}

	order, err := s.submitOrderHandler.Handle(ctx, cmd)
	if err != nil {
		if order == nil || !errors.Is(err, commands.ErrPublishFailed) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "order notification failed", "order_id", order.ID, "error", err)
	}

	if advice := s.splitter.Advise(order.Items()); advice.ShouldSplit {
		s.metrics.RecordSplitRecommended(ctx, len(advice.Recommendation))
	}

	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrder(ctx, queries.GetOrderQuery{OrderID: id})
}

// GetOrderByNumber retrieves the order carrying the receipt number.
func (s *Service) GetOrderByNumber(ctx context.Context, number int) (*domain.Order, error) {
	if number <= 0 {
		return nil, fmt.Errorf("%w: order number must be positive", ErrValidation)
	}
	return s.getOrder(ctx, queries.GetOrderQuery{OrderNumber: number})
}

func (s *Service) getOrder(ctx context.Context, query queries.GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.getOrderHandler.Handle(ctx, query)
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// DeleteOrder removes an order entered by mistake.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) MarkReady(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, id, "ready", func(o *domain.Order) error {
		o.MarkReady(s.now())
		return nil
	})
}

func (s *Service) UndoReady(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, id, "undo_ready", func(o *domain.Order) error {
		o.UndoReady()
		return nil
	})
}

func (s *Service) MarkServed(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, id, "served", func(o *domain.Order) error {
		o.MarkServed(s.now())
		return nil
	})
}

func (s *Service) UndoServed(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, id, "undo_served", func(o *domain.Order) error {
		o.UndoServed()
		return nil
	})
}

// transition applies a lifecycle change, stores it and announces the new status.
func (s *Service) transition(ctx context.Context, id, name string, apply func(*domain.Order) error) (*domain.Order, error) {
	order, err := s.update(ctx, id, apply)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStatusTransition(ctx, name)
	if err := s.events.PublishOrderStatusChanged(ctx, order); err != nil {
		s.logger.WarnContext(ctx, "order status notification failed",
			"order_id", order.ID,
			"transition", name,
			"error", err,
		)
	}

	return order, nil
}

func (s *Service) update(ctx context.Context, id string, apply func(*domain.Order) error) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(order); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	return order, nil
}

// AddComment attaches a note from one of the stations.
func (s *Service) AddComment(ctx context.Context, id string, author domain.CommentAuthor, text string) (*domain.Order, error) {
	if !author.Valid() {
		return nil, fmt.Errorf("%w: unknown comment author %q", ErrValidation, author)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	return s.update(ctx, id, func(o *domain.Order) error {
		o.AddComment(author, text, s.now())
		return nil
	})
}

// AssignItem records which barista brews the item at index. An empty name clears it.
func (s *Service) AssignItem(ctx context.Context, id string, index int, name string) (*domain.Order, error) {
	name = strings.TrimSpace(name)
	return s.update(ctx, id, func(o *domain.Order) error {
		return o.MutateItem(index, func(i domain.Item) domain.Item { return i.WithAssignee(name) })
	})
}

// RemoveItem drops the item at index. The discount follows the remaining cups.
func (s *Service) RemoveItem(ctx context.Context, id string, index int) (*domain.Order, error) {
	return s.update(ctx, id, func(o *domain.Order) error {
		return o.RemoveItem(index)
	})
}

// ApplyDiscount anchors the order's discount to a served order.
func (s *Service) ApplyDiscount(ctx context.Context, id string, anchorNumber int) (*domain.Order, error) {
	if anchorNumber <= 0 {
		return nil, fmt.Errorf("%w: discount anchor must be positive", ErrValidation)
	}
	return s.update(ctx, id, func(o *domain.Order) error {
		anchor, err := commands.FindAnchor(ctx, s.repo, anchorNumber, o.ID)
		if err != nil {
			return err
		}
		o.ApplyDiscount(anchor)
		return nil
	})
}

func (s *Service) RemoveDiscount(ctx context.Context, id string) (*domain.Order, error) {
	return s.update(ctx, id, func(o *domain.Order) error {
		o.RemoveDiscount()
		return nil
	})
}

// PrintReceipt sends the receipt and cup labels of an order to the printer.
func (s *Service) PrintReceipt(ctx context.Context, id string) (domain.Receipt, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.NewReceipt(order)
	if err := s.printer.Print(ctx, receipt); err != nil {
		return domain.Receipt{}, fmt.Errorf("print receipt: %w", err)
	}
	return receipt, nil
}

// CheckDiscount classifies whether number can anchor a discount for claimantID.
func (s *Service) CheckDiscount(ctx context.Context, number int, claimantID string) (domain.Eligibility, error) {
	query := queries.CheckDiscountQuery{OrderNumber: number, ClaimantID: claimantID}
	if err := query.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.checkDiscountHandler.Handle(ctx, query)
}

// PreviewSplit analyses a cart that has not been submitted yet.
func (s *Service) PreviewSplit(ctx context.Context, keys []string) (domain.SplitAdvice, error) {
	items, err := commands.ResolveItems(s.menu, keys)
	if err != nil {
		return domain.SplitAdvice{}, err
	}
	return s.splitter.Advise(items), nil
}

// SplitAdvice analyses a stored order.
func (s *Service) SplitAdvice(order *domain.Order) domain.SplitAdvice {
	return order.SplitAdvice(s.splitter)
}

// StatusBoard lists order numbers for the customer display.
func (s *Service) StatusBoard(ctx context.Context) (queries.StatusBoard, error) {
	return s.statusBoardHandler.Handle(ctx)
}

// Catalog returns the menu offered at the register.
func (s *Service) Catalog() []catalog.Entry {
	return s.menu.Entries()
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
