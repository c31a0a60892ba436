package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/cafepos/internal/notify"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/dejobratic/cafepos/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *notify.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *notify.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderSubmitted(ctx context.Context, order *domain.Order) error {
	return e.observe(ctx, "EventBus.PublishOrderSubmitted", notify.RoutingKeySubmitted, order, e.bus.PublishOrderSubmitted)
}

func (e *ObservableEventBus) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	key := notify.StatusRoutingKey(order.Status())
	return e.observe(ctx, "EventBus.PublishOrderStatusChanged", key, order, e.bus.PublishOrderStatusChanged)
}

func (e *ObservableEventBus) observe(
	ctx context.Context,
	spanName, routingKey string,
	order *domain.Order,
	publish func(context.Context, *domain.Order) error,
) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.Int("order.number", order.OrderNumber),
		attribute.String("event.type", routingKey),
		attribute.String("messaging.routing_key", routingKey),
	)

	start := time.Now()
	err := publish(ctx, order)
	e.metrics.RecordPublish(ctx, routingKey, time.Since(start).Seconds(), err == nil)

	telemetry.FinishSpan(span, err)
	return err
}
