package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dejobratic/cafepos/internal/catalog"
	"github.com/dejobratic/cafepos/internal/orders/app/commands"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
)

type mockRepository struct {
	saveFn       func(ctx context.Context, order *domain.Order) error
	listFn       func(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error)
	nextNumberFn func(ctx context.Context) (int, error)
}

func (m *mockRepository) Save(ctx context.Context, order *domain.Order) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, order)
	}
	if order.ID == "" {
		order.ID = "generated-id"
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockRepository) NextOrderNumber(ctx context.Context) (int, error) {
	if m.nextNumberFn != nil {
		return m.nextNumberFn(ctx)
	}
	return 1, nil
}

type mockEventBus struct {
	publishOrderSubmittedFn func(ctx context.Context, order *domain.Order) error
}

func (m *mockEventBus) PublishOrderSubmitted(ctx context.Context, order *domain.Order) error {
	if m.publishOrderSubmittedFn != nil {
		return m.publishOrderSubmittedFn(ctx, order)
	}
	return nil
}

func (m *mockEventBus) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	return nil
}

var submittedAt = time.Date(2026, 10, 3, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return submittedAt }

func newHandler(repo ports.OrderRepository, events ports.EventBus) *commands.SubmitOrderCommandHandler {
	return commands.NewSubmitOrderCommandHandler(repo, events, catalog.Default(), domain.DefaultDiscountPerCup, fixedClock)
}

func servedOrder(number int, keys ...string) *domain.Order {
	menu := catalog.Default()
	o := domain.NewOrder(number, domain.DefaultDiscountPerCup, submittedAt)
	o.ID = "anchor-id"
	for _, key := range keys {
		entry, _ := menu.Lookup(key)
		o.AddItem(domain.NewItem(entry))
	}
	o.MarkServed(submittedAt)
	return o
}

func intPtr(v int) *int { return &v }

func TestSubmitOrder(t *testing.T) {
	t.Run("submits order with catalog items", func(t *testing.T) {
		repo := &mockRepository{
			nextNumberFn: func(ctx context.Context) (int, error) { return 42, nil },
		}
		handler := newHandler(repo, &mockEventBus{})

		cmd := commands.SubmitOrderCommand{
			ItemKeys:        []string{"kenya", "houseBlend", "cookie"},
			ReceivedAmount:  2000,
			EstimateSeconds: 180,
			Comment:         "no lid",
		}

		order, err := handler.Handle(context.Background(), cmd)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if order.ID == "" {
			t.Error("expected order ID to be assigned")
		}
		if order.OrderNumber != 42 {
			t.Errorf("expected order number 42, got %d", order.OrderNumber)
		}
		if order.Total() != 1400 {
			t.Errorf("expected total 1400, got %d", order.Total())
		}
		if order.Charge() != 600 {
			t.Errorf("expected charge 600, got %d", order.Charge())
		}
		if !order.CreatedAt.Equal(submittedAt) {
			t.Errorf("expected created at %v, got %v", submittedAt, order.CreatedAt)
		}
		if order.EstimateSeconds != 180 {
			t.Errorf("expected estimate 180, got %d", order.EstimateSeconds)
		}
		comments := order.Comments()
		if len(comments) != 1 || comments[0].Author != domain.AuthorCashier {
			t.Errorf("expected one cashier comment, got %+v", comments)
		}
		if order.Status() != domain.StatusPending {
			t.Errorf("expected pending, got %s", order.Status())
		}
	})

	t.Run("applies discount from a served anchor", func(t *testing.T) {
		anchor := servedOrder(7, "houseBlend", "kenya")
		repo := &mockRepository{
			listFn: func(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
				return []*domain.Order{anchor}, nil
			},
		}
		handler := newHandler(repo, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{
			ItemKeys:       []string{"kenya", "kenya", "kenya"},
			DiscountAnchor: intPtr(7),
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if n, ok := order.DiscountAnchor(); !ok || n != 7 {
			t.Errorf("expected anchor 7, got %d (%v)", n, ok)
		}
		if order.Discount() != 200 {
			t.Errorf("expected discount 200, got %d", order.Discount())
		}
	})

	t.Run("rejects anchor that is not available", func(t *testing.T) {
		tests := []struct {
			name   string
			orders func() []*domain.Order
		}{
			{
				name:   "missing anchor",
				orders: func() []*domain.Order { return nil },
			},
			{
				name: "unserved anchor",
				orders: func() []*domain.Order {
					o := servedOrder(7, "kenya")
					o.UndoServed()
					return []*domain.Order{o}
				},
			},
			{
				name: "already claimed anchor",
				orders: func() []*domain.Order {
					anchor := servedOrder(7, "kenya")
					claimant := domain.NewOrder(8, domain.DefaultDiscountPerCup, submittedAt)
					claimant.ID = "claimant"
					claimant.ApplyDiscount(anchor)
					return []*domain.Order{anchor, claimant}
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				saved := false
				repo := &mockRepository{
					listFn: func(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
						return tt.orders(), nil
					},
					saveFn: func(ctx context.Context, order *domain.Order) error {
						saved = true
						return nil
					},
				}
				handler := newHandler(repo, &mockEventBus{})

				order, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{
					ItemKeys:       []string{"kenya"},
					DiscountAnchor: intPtr(7),
				})
				if !errors.Is(err, commands.ErrDiscountUnavailable) {
					t.Fatalf("expected ErrDiscountUnavailable, got %v", err)
				}
				if order != nil {
					t.Errorf("expected nil order, got %+v", order)
				}
				if saved {
					t.Error("expected order not to be saved")
				}
			})
		}
	})

	t.Run("returns catalog error for unknown item", func(t *testing.T) {
		handler := newHandler(&mockRepository{}, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{
			ItemKeys: []string{"kenya", "espressoTonic"},
		})
		if !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("expected catalog.ErrNotFound, got %v", err)
		}
	})

	t.Run("returns repository error", func(t *testing.T) {
		expected := errors.New("database unavailable")
		repo := &mockRepository{
			saveFn: func(ctx context.Context, order *domain.Order) error { return expected },
		}
		handler := newHandler(repo, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}})
		if !errors.Is(err, expected) {
			t.Errorf("expected %v, got %v", expected, err)
		}
		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}
	})

	t.Run("retries with a fresh number when the allocated one is taken", func(t *testing.T) {
		next := 0
		var saved []int
		repo := &mockRepository{
			nextNumberFn: func(ctx context.Context) (int, error) {
				next++
				return next, nil
			},
			saveFn: func(ctx context.Context, order *domain.Order) error {
				saved = append(saved, order.OrderNumber)
				if order.OrderNumber < 3 {
					return ports.ErrDuplicateOrderNumber
				}
				order.ID = "order-3"
				return nil
			},
		}
		handler := newHandler(repo, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if order.OrderNumber != 3 {
			t.Errorf("expected order number 3, got %d", order.OrderNumber)
		}
		if len(saved) != 3 {
			t.Errorf("expected 3 save attempts, got %v", saved)
		}
	})

	t.Run("gives up when numbers keep clashing", func(t *testing.T) {
		repo := &mockRepository{
			saveFn: func(ctx context.Context, order *domain.Order) error {
				return ports.ErrDuplicateOrderNumber
			},
		}
		handler := newHandler(repo, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}})
		if !errors.Is(err, ports.ErrDuplicateOrderNumber) {
			t.Errorf("expected ErrDuplicateOrderNumber, got %v", err)
		}
	})

	t.Run("returns order with publish error when event fails", func(t *testing.T) {
		publishErr := errors.New("broker down")
		events := &mockEventBus{
			publishOrderSubmittedFn: func(ctx context.Context, order *domain.Order) error { return publishErr },
		}
		handler := newHandler(&mockRepository{}, events)

		order, err := handler.Handle(context.Background(), commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}})
		if !errors.Is(err, commands.ErrPublishFailed) || !errors.Is(err, publishErr) {
			t.Errorf("expected wrapped publish error, got %v", err)
		}
		if order == nil || order.ID == "" {
			t.Error("expected saved order to be returned")
		}
	})
}

func TestSubmitOrderCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		cmd     commands.SubmitOrderCommand
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid command",
			cmd:  commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}, ReceivedAmount: 1000},
		},
		{
			name:    "no items",
			cmd:     commands.SubmitOrderCommand{},
			wantErr: true,
			errMsg:  "validation failed: items are required",
		},
		{
			name:    "negative received amount",
			cmd:     commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}, ReceivedAmount: -1},
			wantErr: true,
			errMsg:  "validation failed: received_amount must not be negative",
		},
		{
			name:    "negative estimate",
			cmd:     commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}, EstimateSeconds: -5},
			wantErr: true,
			errMsg:  "validation failed: estimate_seconds must not be negative",
		},
		{
			name:    "zero discount anchor",
			cmd:     commands.SubmitOrderCommand{ItemKeys: []string{"kenya"}, DiscountAnchor: intPtr(0)},
			wantErr: true,
			errMsg:  "validation failed: discount_anchor must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, commands.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("expected error message %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestFindAnchorExcludesClaimant(t *testing.T) {
	anchor := servedOrder(3, "kenya")
	claimant := domain.NewOrder(4, domain.DefaultDiscountPerCup, submittedAt)
	claimant.ID = "claimant"
	claimant.ApplyDiscount(anchor)

	repo := &mockRepository{
		listFn: func(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
			return []*domain.Order{anchor, claimant}, nil
		},
	}

	got, err := commands.FindAnchor(context.Background(), repo, 3, "claimant")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.OrderNumber != 3 {
		t.Errorf("expected anchor 3, got %d", got.OrderNumber)
	}

	if _, err := commands.FindAnchor(context.Background(), repo, 3, "someone-else"); !errors.Is(err, commands.ErrDiscountUnavailable) {
		t.Errorf("expected ErrDiscountUnavailable for another claimant, got %v", err)
	}
}

func TestClock(t *testing.T) {
	t.Run("truncates to microseconds", func(t *testing.T) {
		at := time.Date(2026, 10, 3, 9, 30, 0, 123456789, time.UTC)
		got := commands.Clock(func() time.Time { return at })()

		if got.Nanosecond() != 123456000 {
			t.Errorf("expected 123456000ns, got %d", got.Nanosecond())
		}
	})

	t.Run("defaults to the wall clock in UTC", func(t *testing.T) {
		got := commands.Clock(nil)()

		if got.Location() != time.UTC {
			t.Errorf("expected UTC, got %v", got.Location())
		}
		if got.Nanosecond()%1000 != 0 {
			t.Errorf("expected microsecond precision, got %dns", got.Nanosecond())
		}
	})
}
