package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	engineMeterName = "nudge.engine"
)

type EngineMetrics struct {
	notificationsCreated metric.Int64Counter
	notificationsSkipped metric.Int64Counter
	notificationsFailed  metric.Int64Counter
	responsesRecorded    metric.Int64Counter
	scanDuration         metric.Float64Histogram
	deliveryDuration     metric.Float64Histogram
}

func NewEngineMetrics() (*EngineMetrics, error) {
	meter := otel.Meter(engineMeterName)

	notificationsCreated, err := meter.Int64Counter(
		"nudge_notifications_created_total",
		metric.WithDescription("Total number of notifications created"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsSkipped, err := meter.Int64Counter(
		"nudge_notifications_skipped_total",
		metric.WithDescription("Total number of candidate notifications skipped"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsFailed, err := meter.Int64Counter(
		"nudge_notifications_failed_total",
		metric.WithDescription("Total number of notifications that failed to persist or dispatch"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	responsesRecorded, err := meter.Int64Counter(
		"nudge_responses_total",
		metric.WithDescription("Total number of user responses recorded"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	scanDuration, err := meter.Float64Histogram(
		"nudge_scan_duration_seconds",
		metric.WithDescription("Issue scan duration per user"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	deliveryDuration, err := meter.Float64Histogram(
		"nudge_delivery_duration_seconds",
		metric.WithDescription("Time spent persisting and registering a notification"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
		),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		notificationsCreated: notificationsCreated,
		notificationsSkipped: notificationsSkipped,
		notificationsFailed:  notificationsFailed,
		responsesRecorded:    responsesRecorded,
		scanDuration:         scanDuration,
		deliveryDuration:     deliveryDuration,
	}, nil
}

func (m *EngineMetrics) RecordNotificationCreated(ctx context.Context, notificationType, trigger string) {
	m.notificationsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", notificationType),
		attribute.String("trigger", trigger),
	))
}

func (m *EngineMetrics) RecordNotificationSkipped(ctx context.Context, notificationType, reason string) {
	m.notificationsSkipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", notificationType),
		attribute.String("reason", reason),
	))
}

func (m *EngineMetrics) RecordNotificationFailed(ctx context.Context, notificationType, stage string) {
	m.notificationsFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", notificationType),
		attribute.String("stage", stage),
	))
}

func (m *EngineMetrics) RecordResponse(ctx context.Context, responseType string) {
	m.responsesRecorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("response", responseType),
	))
}

func (m *EngineMetrics) RecordScanDuration(ctx context.Context, trigger string, duration time.Duration) {
	m.scanDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("trigger", trigger),
	))
}

func (m *EngineMetrics) RecordDeliveryDuration(ctx context.Context, duration time.Duration) {
	m.deliveryDuration.Record(ctx, duration.Seconds())
}
