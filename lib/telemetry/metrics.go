package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("tabrefresh")
var refreshCounter, _ = meter.Int64Counter(
	"tabrefresh.refreshes",
	metric.WithDescription("data source refresh attempts"),
)

// RecordRefresh counts one refresh attempt with its outcome.
func RecordRefresh(ctx context.Context, dataSource string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	refreshCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("data_source", dataSource),
		attribute.String("outcome", outcome),
	))
}
