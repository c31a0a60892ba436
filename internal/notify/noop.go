package notify

import (
	"context"
	"log/slog"

	"github.com/dejobratic/cafepos/internal/orders/domain"
)

// NoopEventBus logs events without sending them to a broker. Used when no
// RabbitMQ URL is configured.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderSubmitted(ctx context.Context, order *domain.Order) error {
	slog.DebugContext(ctx, "event::"+RoutingKeySubmitted, "order_id", order.ID, "order_number", order.OrderNumber)
	return nil
}

func (n *NoopEventBus) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	slog.DebugContext(ctx, "event::"+StatusRoutingKey(order.Status()),
		"order_id", order.ID,
		"order_number", order.OrderNumber,
	)
	return nil
}
