//go:build !gcloud

package nudgerecorder

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.NudgeResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "nudge result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, nudge result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "nudge result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordScanResults(ctx context.Context, records []domain.ScanResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		runID := record.RunID
		if runID == "" {
			runID = "default"
		}

		point := influxdb2.NewPoint(
			"nudge_scan_result",
			map[string]string{
				"run_id":  runID,
				"user_id": record.UserID,
				"trigger": record.Trigger,
			},
			map[string]any{
				"scanned_count": record.ScannedCount,
				"created_count": record.CreatedCount,
				"skipped_count": record.SkippedCount,
				"capped_count":  record.CappedCount,
				"failed_count":  record.FailedCount,
				"scanned_unix":  record.ScannedAt.Unix(),
			},
			time.Now(),
		)

		if err := r.writeAPI.WritePoint(ctx, point); err != nil {
			slog.WarnContext(ctx, "failed to write scan result to InfluxDB",
				slog.String("error", err.Error()),
				slog.String("user_id", record.UserID),
				slog.String("trigger", record.Trigger),
			)
		}
	}

	return nil
}

func (r *influxDBRecorder) RecordResponseEvent(ctx context.Context, record domain.ResponseEventRecord) error {
	point := influxdb2.NewPoint(
		"nudge_response",
		map[string]string{
			"user_id":  record.UserID,
			"type":     record.Type.String(),
			"response": record.Response.String(),
		},
		map[string]any{
			"record_id":      record.RecordID,
			"issue_key":      record.IssueKey,
			"responded_unix": record.RespondedAt.Unix(),
		},
		time.Now(),
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write response event to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("record_id", record.RecordID),
		)
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	r.client.Close()
	return nil
}
