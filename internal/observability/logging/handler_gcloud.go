//go:build gcloud

package logging

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// gcpTraceAttrs emits the Cloud Logging trace correlation fields when the
// context carries a sampled span.
func gcpTraceAttrs(ctx context.Context, projectID string) []slog.Attr {
	span := trace.SpanContextFromContext(ctx)
	if !span.IsValid() {
		return nil
	}

	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	attrs := []slog.Attr{
		slog.String("logging.googleapis.com/spanId", span.SpanID().String()),
		slog.Bool("logging.googleapis.com/trace_sampled", span.IsSampled()),
	}
	if projectID != "" {
		attrs = append(attrs, slog.String("logging.googleapis.com/trace",
			"projects/"+projectID+"/traces/"+span.TraceID().String()))
	}

	return attrs
}
