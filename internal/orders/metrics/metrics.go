package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersSubmittedTotal    metric.Int64Counter
	orderSubmissionDuration metric.Float64Histogram
	splitsRecommendedTotal  metric.Int64Counter
	statusTransitionsTotal  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersSubmittedTotal, err = meter.Int64Counter(
		"orders_submitted_total",
		metric.WithDescription("Total number of orders submitted at the register"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_submitted_total counter: %w", err)
	}

	m.orderSubmissionDuration, err = meter.Float64Histogram(
		"order_submission_duration_seconds",
		metric.WithDescription("Duration of order submission operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_submission_duration histogram: %w", err)
	}

	m.splitsRecommendedTotal, err = meter.Int64Counter(
		"order_splits_recommended_total",
		metric.WithDescription("Orders that needed more than one drip station cycle"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_splits_recommended_total counter: %w", err)
	}

	m.statusTransitionsTotal, err = meter.Int64Counter(
		"order_status_transitions_total",
		metric.WithDescription("Ready and served transitions, including undos"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_status_transitions_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderSubmitted(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersSubmittedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordSubmissionDuration(ctx context.Context, durationSeconds float64) {
	m.orderSubmissionDuration.Record(ctx, durationSeconds)
}

// RecordSplitRecommended counts an order that was split into subOrders cycles.
func (m *Metrics) RecordSplitRecommended(ctx context.Context, subOrders int) {
	m.splitsRecommendedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("sub_orders", subOrders),
	))
}

func (m *Metrics) RecordStatusTransition(ctx context.Context, transition string) {
	m.statusTransitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transition", transition),
	))
}
