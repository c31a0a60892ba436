package http

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics covers the register-facing API: latency per route and how often a
// retried submission was answered from the idempotency store.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	replaysTotal    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration by route"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration histogram: %w", err)
	}

	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("HTTP requests by route and status class"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total counter: %w", err)
	}

	replaysTotal, err := meter.Int64Counter(
		"http_idempotent_replays_total",
		metric.WithDescription("Order submissions answered with a stored response"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_idempotent_replays counter: %w", err)
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestsTotal:   requestsTotal,
		replaysTotal:    replaysTotal,
	}, nil
}

func (m *Metrics) RecordRequest(ctx context.Context, method, route string, statusCode int, elapsed time.Duration) {
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass(statusCode)),
	))
	m.requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

func (m *Metrics) RecordReplay(ctx context.Context) {
	m.replaysTotal.Add(ctx, 1)
}

// statusClass folds a status code into 2xx, 4xx and so on.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
