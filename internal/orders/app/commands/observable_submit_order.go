package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/metrics"
	"github.com/dejobratic/cafepos/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "SubmitOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordSubmissionDuration(ctx, duration)
		o.metrics.RecordOrderSubmitted(ctx, success)
	}()

	o.logger.InfoContext(ctx, "submitting order",
		"item_count", len(cmd.ItemKeys),
		"received_amount", cmd.ReceivedAmount,
		"discount_requested", cmd.DiscountAnchor != nil,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to submit order",
			"error", err,
			"item_count", len(cmd.ItemKeys),
		)
		return order, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.Int("order.number", order.OrderNumber),
		attribute.Int("order.total", order.Total()),
		attribute.Int("order.discount", order.Discount()),
		attribute.Int("order.coffee_cups", len(order.CoffeeCups())),
	)

	o.logger.InfoContext(ctx, "order submitted",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"billing_amount", order.BillingAmount(),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
