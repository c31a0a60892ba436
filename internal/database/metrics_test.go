package database

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecordQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordQuery(ctx, "postgres", "save_order", OutcomeOK, 20*time.Millisecond)
	metrics.RecordQuery(ctx, "postgres", "get_order_by_id", OutcomeNotFound, 5*time.Millisecond)
	metrics.RecordQuery(ctx, "memory", "save_order", OutcomeError, time.Millisecond)

	got := collect(t, reader)

	t.Run("records a duration point per label set", func(t *testing.T) {
		histogram, ok := got["store_query_duration_seconds"].Data.(metricdata.Histogram[float64])
		if !ok {
			t.Fatal("expected store_query_duration_seconds histogram")
		}
		if len(histogram.DataPoints) != 3 {
			t.Errorf("expected 3 data points, got %d", len(histogram.DataPoints))
		}
	})

	t.Run("counts only failed calls as errors", func(t *testing.T) {
		sum, ok := got["store_query_errors_total"].Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("expected store_query_errors_total counter")
		}
		if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
			t.Errorf("expected a single error point with value 1, got %+v", sum.DataPoints)
		}
		store, _ := sum.DataPoints[0].Attributes.Value("store")
		if store.AsString() != "memory" {
			t.Errorf("expected error attributed to memory store, got %s", store.AsString())
		}
	})
}
