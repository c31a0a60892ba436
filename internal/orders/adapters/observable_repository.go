package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/dejobratic/cafepos/internal/database"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/dejobratic/cafepos/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository traces and times every call to the wrapped repository.
type ObservableRepository struct {
	repo    ports.OrderRepository
	store   string
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, store string, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{repo: repo, store: store, metrics: metrics}
}

func (r *ObservableRepository) Save(ctx context.Context, order *domain.Order) error {
	ctx, done := observeStore(ctx, r.metrics, r.store, "OrderRepository.Save", "save_order",
		attribute.String("order.id", order.ID),
		attribute.Int("order.number", order.OrderNumber),
	)
	err := r.repo.Save(ctx, order)
	done(err)
	return err
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, done := observeStore(ctx, r.metrics, r.store, "OrderRepository.GetByID", "get_order_by_id",
		attribute.String("order.id", id),
	)
	order, err := r.repo.GetByID(ctx, id)
	done(err)
	return order, err
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("page", filter.Page),
		attribute.Int("page_size", filter.PageSize),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}

	ctx, done := observeStore(ctx, r.metrics, r.store, "OrderRepository.List", "list_orders", attrs...)
	orders, err := r.repo.List(ctx, filter)
	done(err, attribute.Int("result.count", len(orders)))
	return orders, err
}

func (r *ObservableRepository) Delete(ctx context.Context, id string) error {
	ctx, done := observeStore(ctx, r.metrics, r.store, "OrderRepository.Delete", "delete_order",
		attribute.String("order.id", id),
	)
	err := r.repo.Delete(ctx, id)
	done(err)
	return err
}

func (r *ObservableRepository) NextOrderNumber(ctx context.Context) (int, error) {
	ctx, done := observeStore(ctx, r.metrics, r.store, "OrderRepository.NextOrderNumber", "next_order_number")
	next, err := r.repo.NextOrderNumber(ctx)
	done(err, attribute.Int("order.next_number", next))
	return next, err
}

// observeStore starts a span for one storage call. The returned func ends the
// span and records the call duration; ports.ErrNotFound is not a failure.
func observeStore(
	ctx context.Context,
	metrics *database.Metrics,
	store, spanName, operation string,
	attrs ...attribute.KeyValue,
) (context.Context, func(error, ...attribute.KeyValue)) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	telemetry.AddSpanAttributes(span, append(attrs,
		attribute.String("db.system", store),
		attribute.String("operation", operation),
	)...)
	start := time.Now()

	return ctx, func(err error, resultAttrs ...attribute.KeyValue) {
		outcome := database.OutcomeOK
		switch {
		case errors.Is(err, ports.ErrNotFound):
			outcome, err = database.OutcomeNotFound, nil
		case err != nil:
			outcome = database.OutcomeError
		}
		metrics.RecordQuery(ctx, store, operation, outcome, time.Since(start))

		if err == nil {
			telemetry.AddSpanAttributes(span, resultAttrs...)
		}
		telemetry.FinishSpan(span, err)
	}
}
