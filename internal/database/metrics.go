package database

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Query outcomes used as the outcome label.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics records storage calls made by the order and idempotency stores.
type Metrics struct {
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	queryDuration, err := meter.Float64Histogram(
		"store_query_duration_seconds",
		metric.WithDescription("Storage call duration by store and operation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create store_query_duration histogram: %w", err)
	}

	queryErrors, err := meter.Int64Counter(
		"store_query_errors_total",
		metric.WithDescription("Failed storage calls, not counting lookups of missing rows"),
	)
	if err != nil {
		return nil, fmt.Errorf("create store_query_errors counter: %w", err)
	}

	return &Metrics{queryDuration: queryDuration, queryErrors: queryErrors}, nil
}

// RecordQuery records one call against store ("memory", "postgres", "redis").
func (m *Metrics) RecordQuery(ctx context.Context, store, operation, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("store", store),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.queryDuration.Record(ctx, elapsed.Seconds(), attrs)
	if outcome == OutcomeError {
		m.queryErrors.Add(ctx, 1, attrs)
	}
}
