package telemetry

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DiscardExporter accepts spans and metrics and drops them. It satisfies both
// sdktrace.SpanExporter and sdkmetric.Exporter.
type DiscardExporter struct{}

var (
	_ sdktrace.SpanExporter = DiscardExporter{}
	_ sdkmetric.Exporter    = DiscardExporter{}
)

func (DiscardExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }

func (DiscardExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

func (DiscardExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

func (DiscardExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }

func (DiscardExporter) ForceFlush(context.Context) error { return nil }

func (DiscardExporter) Shutdown(context.Context) error { return nil }
