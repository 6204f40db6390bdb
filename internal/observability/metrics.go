package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "noresrp/multiplayer-core"

var (
	metricsOnce sync.Once

	repositoryOps      metric.Int64Counter
	messageEvents      metric.Int64Counter
	notificationEvents metric.Int64Counter
	nodeEvents         metric.Int64Counter
	sessionEvents      metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter(meterName)
	// Counter construction only fails on invalid instrument names; the
	// otel global falls back to no-op instruments without an SDK.
	repositoryOps, _ = meter.Int64Counter("repository_operations_total")
	messageEvents, _ = meter.Int64Counter("message_events_total")
	notificationEvents, _ = meter.Int64Counter("notification_events_total")
	nodeEvents, _ = meter.Int64Counter("node_events_total")
	sessionEvents, _ = meter.Int64Counter("session_events_total")
}

func RecordRepositoryOperation(ctx context.Context, entity, op, outcome string) {
	metricsOnce.Do(initMetrics)
	if repositoryOps == nil {
		return
	}
	repositoryOps.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
}

func RecordMessageEvent(ctx context.Context, outcome string) {
	metricsOnce.Do(initMetrics)
	if messageEvents == nil {
		return
	}
	messageEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordNotificationEvent(ctx context.Context, kind, outcome string) {
	metricsOnce.Do(initMetrics)
	if notificationEvents == nil {
		return
	}
	notificationEvents.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("type", kind),
			attribute.String("outcome", outcome),
		))
}

func RecordNodeEvent(ctx context.Context, op, outcome string) {
	metricsOnce.Do(initMetrics)
	if nodeEvents == nil {
		return
	}
	nodeEvents.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
}

func RecordSessionEvent(ctx context.Context, op, outcome string) {
	metricsOnce.Do(initMetrics)
	if sessionEvents == nil {
		return
	}
	sessionEvents.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
}
