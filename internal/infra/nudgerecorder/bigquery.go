//go:build gcloud

package nudgerecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

type bigQueryScanRecord struct {
	RecordedAt   time.Time `bigquery:"recorded_at"`
	RunID        string    `bigquery:"run_id"`
	UserID       string    `bigquery:"user_id"`
	Trigger      string    `bigquery:"trigger"`
	ScannedCount int64     `bigquery:"scanned_count"`
	CreatedCount int64     `bigquery:"created_count"`
	SkippedCount int64     `bigquery:"skipped_count"`
	CappedCount  int64     `bigquery:"capped_count"`
	FailedCount  int64     `bigquery:"failed_count"`
}

type bigQueryResponseRecord struct {
	RecordedAt  time.Time `bigquery:"recorded_at"`
	RecordID    string    `bigquery:"record_id"`
	UserID      string    `bigquery:"user_id"`
	IssueKey    string    `bigquery:"issue_key"`
	Type        string    `bigquery:"type"`
	Response    string    `bigquery:"response"`
	RespondedAt time.Time `bigquery:"responded_at"`
}

type bigQueryRecorder struct {
	client           *bigquery.Client
	scanInserter     *bigquery.Inserter
	responseInserter *bigquery.Inserter
	dataset          string
	table            string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.NudgeResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "nudge result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, nudge result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, nudge result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	dataset := client.Dataset(cfg.BigQueryDataset)
	scanInserter := dataset.Table(cfg.BigQueryTable).Inserter()
	responseInserter := dataset.Table(cfg.BigQueryTable + "_responses").Inserter()

	slog.InfoContext(ctx, "nudge result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:           client,
		scanInserter:     scanInserter,
		responseInserter: responseInserter,
		dataset:          cfg.BigQueryDataset,
		table:            cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordScanResults(ctx context.Context, records []domain.ScanResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	bqRecords := make([]*bigQueryScanRecord, 0, len(records))
	for _, record := range records {
		bqRecords = append(bqRecords, &bigQueryScanRecord{
			RecordedAt:   now,
			RunID:        record.RunID,
			UserID:       record.UserID,
			Trigger:      record.Trigger,
			ScannedCount: int64(record.ScannedCount),
			CreatedCount: int64(record.CreatedCount),
			SkippedCount: int64(record.SkippedCount),
			CappedCount:  int64(record.CappedCount),
			FailedCount:  int64(record.FailedCount),
		})
	}

	if err := r.scanInserter.Put(ctx, bqRecords); err != nil {
		slog.WarnContext(ctx, "failed to insert scan results to BigQuery",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(bqRecords)),
		)
	}

	return nil
}

func (r *bigQueryRecorder) RecordResponseEvent(ctx context.Context, record domain.ResponseEventRecord) error {
	bqRecord := &bigQueryResponseRecord{
		RecordedAt:  time.Now(),
		RecordID:    record.RecordID,
		UserID:      record.UserID,
		IssueKey:    record.IssueKey,
		Type:        record.Type.String(),
		Response:    record.Response.String(),
		RespondedAt: record.RespondedAt,
	}

	if err := r.responseInserter.Put(ctx, bqRecord); err != nil {
		slog.WarnContext(ctx, "failed to insert response event to BigQuery",
			slog.String("error", err.Error()),
			slog.String("record_id", record.RecordID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(_ context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	return r.client.Close()
}
