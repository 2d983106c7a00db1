package domain

import (
	"context"
	"time"
)

// ScanResultRecord summarizes one per-user scan invocation for the
// analytics backend.
type ScanResultRecord struct {
	RunID        string
	UserID       string
	Trigger      string
	ScannedCount int
	CreatedCount int
	SkippedCount int
	CappedCount  int
	FailedCount  int
	ScannedAt    time.Time
}

// ResponseEventRecord captures a single user response for the analytics
// backend.
type ResponseEventRecord struct {
	RecordID    string
	UserID      string
	IssueKey    string
	Type        NotificationType
	Response    ResponseType
	RespondedAt time.Time
}

// NudgeResultRecorder streams scan and response outcomes to an analytics
// store. Recording is best-effort; failures are logged, never surfaced
// to the nudge path.
type NudgeResultRecorder interface {
	RecordScanResults(ctx context.Context, records []ScanResultRecord) error
	RecordResponseEvent(ctx context.Context, record ResponseEventRecord) error
	Flush(ctx context.Context) error
	Close() error
}
