package nudgerecorder

import (
	"context"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.NudgeResultRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordScanResults(_ context.Context, _ []domain.ScanResultRecord) error {
	return nil
}

func (n *noopRecorder) RecordResponseEvent(_ context.Context, _ domain.ResponseEventRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
