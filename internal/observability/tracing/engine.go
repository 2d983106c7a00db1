package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const engineTracerName = "github.com/KasumiMercury/primind-nudge-engine/internal/service/engine"

func EngineTracer() trace.Tracer {
	return otel.Tracer(engineTracerName)
}

func StartScanSpan(ctx context.Context, trigger, userID string, now time.Time) (context.Context, trace.Span) {
	return EngineTracer().Start(ctx, "engine.scan."+trigger,
		trace.WithAttributes(
			attribute.String("scan.trigger", trigger),
			attribute.String("scan.user_id", userID),
			attribute.String("scan.now", now.Format(time.RFC3339)),
		),
	)
}

func StartDeliverySpan(ctx context.Context, userID, issueKey, notificationType string) (context.Context, trace.Span) {
	return EngineTracer().Start(ctx, "engine.delivery.create",
		trace.WithAttributes(
			attribute.String("notification.user_id", userID),
			attribute.String("notification.issue_key", issueKey),
			attribute.String("notification.type", notificationType),
		),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return EngineTracer().Start(ctx, "engine.external_api."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordScanResult(span trace.Span, scanned, created, skipped, capped, failed int, err error) {
	span.SetAttributes(
		attribute.Int("scan.scanned_count", scanned),
		attribute.Int("scan.created_count", created),
		attribute.Int("scan.skipped_count", skipped),
		attribute.Int("scan.capped_count", capped),
		attribute.Int("scan.failed_count", failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordDeliveryResult(span trace.Span, recordID string, scheduledFor time.Time, err error) {
	span.SetAttributes(
		attribute.String("notification.record_id", recordID),
		attribute.String("notification.scheduled_for", scheduledFor.Format(time.RFC3339)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordExternalAPIResult(span trace.Span, statusCode int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
