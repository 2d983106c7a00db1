package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-nudge-engine/internal/config"
	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/delivery"
)

// ScanRunner drives the periodic stale, deadline, and expiry jobs. Each
// tick fans out over every registered user with bounded parallelism so
// a large user set cannot overload the issue source or the repository.
type ScanRunner struct {
	engine   *Engine
	delivery *delivery.Manager
	prefs    domain.PreferenceStore
	recorder domain.NudgeResultRecorder
	cfg      *config.ScanConfig

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScanRunner(
	eng *Engine,
	deliveryManager *delivery.Manager,
	prefs domain.PreferenceStore,
	recorder domain.NudgeResultRecorder,
	cfg *config.ScanConfig,
) *ScanRunner {
	return &ScanRunner{
		engine:   eng,
		delivery: deliveryManager,
		prefs:    prefs,
		recorder: recorder,
		cfg:      cfg,
		cron:     cron.New(),
	}
}

// Start registers the cron jobs and begins ticking. A no-op when scans
// are disabled by configuration.
func (r *ScanRunner) Start(ctx context.Context) error {
	if r.cfg.Disabled {
		slog.InfoContext(ctx, "periodic scans disabled")
		return nil
	}

	r.ctx, r.cancel = context.WithCancel(context.WithoutCancel(ctx))

	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{r.cfg.StaleCron, "stale scan", func() { r.runScans(TriggerStale) }},
		{r.cfg.DeadlineCron, "deadline scan", func() { r.runScans(TriggerDeadline) }},
		{r.cfg.ExpiryCron, "expiry sweep", r.runExpiry},
	}
	for _, job := range jobs {
		if _, err := r.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("registering %s job %q: %w", job.name, job.spec, err)
		}
	}

	r.cron.Start()

	slog.InfoContext(ctx, "scan runner started",
		slog.String("stale_cron", r.cfg.StaleCron),
		slog.String("deadline_cron", r.cfg.DeadlineCron),
		slog.String("expiry_cron", r.cfg.ExpiryCron),
		slog.Int("parallelism", r.cfg.Parallelism),
	)

	return nil
}

// Stop cancels the fan-out so no new per-issue work is launched, then
// waits for running jobs to drain or the context to expire.
func (r *ScanRunner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := r.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runScans executes one trigger's scan for every registered user.
func (r *ScanRunner) runScans(trigger string) {
	ctx := r.ctx
	now := time.Now().UTC()
	runID := uuid.NewString()

	userIDs, err := r.prefs.ListUserIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list users for scan",
			slog.String("trigger", trigger),
			slog.String("error", err.Error()),
		)
		return
	}
	if len(userIDs) == 0 {
		return
	}

	results := make([]domain.ScanResultRecord, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for i, userID := range userIDs {
		g.Go(func() error {
			result, err := r.scanUser(gctx, userID, now, trigger)
			if err != nil {
				slog.WarnContext(gctx, "user scan failed",
					slog.String("run_id", runID),
					slog.String("trigger", trigger),
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
			}
			if result != nil {
				results[i] = domain.ScanResultRecord{
					RunID:        runID,
					UserID:       userID,
					Trigger:      trigger,
					ScannedCount: result.ScannedCount,
					CreatedCount: result.CreatedCount,
					SkippedCount: result.SkippedCount,
					CappedCount:  result.CappedCount,
					FailedCount:  len(result.Failures),
					ScannedAt:    now,
				}
			}
			// Per-user failures never abort the run.
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.ScanResultRecord, 0, len(results))
	for _, record := range results {
		if record.RunID != "" {
			records = append(records, record)
		}
	}
	if r.recorder != nil && len(records) > 0 {
		if err := r.recorder.RecordScanResults(ctx, records); err != nil {
			slog.WarnContext(ctx, "failed to record scan results",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.InfoContext(ctx, "scan run completed",
		slog.String("run_id", runID),
		slog.String("trigger", trigger),
		slog.Int("users", len(userIDs)),
	)
}

func (r *ScanRunner) scanUser(ctx context.Context, userID string, now time.Time, trigger string) (*ScanResult, error) {
	switch trigger {
	case TriggerDeadline:
		return r.engine.ProcessDeadlineWarnings(ctx, userID, now)
	default:
		return r.engine.ProcessStaleIssues(ctx, userID, now)
	}
}

func (r *ScanRunner) runExpiry() {
	ctx := r.ctx

	expired, err := r.delivery.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		slog.WarnContext(ctx, "expiry sweep failed",
			slog.Int("expired", expired),
			slog.String("error", err.Error()),
		)
		return
	}

	if expired > 0 {
		slog.InfoContext(ctx, "expiry sweep completed", slog.Int("expired", expired))
	}
}
