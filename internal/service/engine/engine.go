package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/config"
	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/metrics"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/tracing"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/analytics"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/content"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/delivery"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/schedule"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/tone"
)

const (
	TriggerStale    = "stale"
	TriggerDeadline = "deadline"
)

// Failure describes one candidate issue that could not be processed
// during a scan. Failures never abort the batch.
type Failure struct {
	IssueKey string `json:"issue_key"`
	Reason   string `json:"reason"`
}

// ScanResult is the outcome of one per-user scan invocation.
type ScanResult struct {
	CreatedCount int       `json:"created_count"`
	Failures     []Failure `json:"failures"`

	ScannedCount int `json:"-"`
	SkippedCount int `json:"-"`
	CappedCount  int `json:"-"`
}

// Engine orchestrates nudge decisions: it filters candidate issues
// through the user's preferences, enforces dedup and frequency caps,
// schedules around quiet hours, renders content, and hands records to
// the delivery manager.
type Engine struct {
	issues    domain.IssueSource
	prefs     domain.PreferenceStore
	repo      domain.NotificationRepository
	sched     *schedule.Service
	tones     *tone.Analyzer
	contents  *content.Generator
	delivery  *delivery.Manager
	analytics *analytics.Aggregator
	recorder  domain.NudgeResultRecorder
	cfg       *config.EngineConfig
	metrics   *metrics.EngineMetrics
}

func New(
	issues domain.IssueSource,
	prefs domain.PreferenceStore,
	repo domain.NotificationRepository,
	sched *schedule.Service,
	tones *tone.Analyzer,
	contents *content.Generator,
	deliveryManager *delivery.Manager,
	aggregator *analytics.Aggregator,
	recorder domain.NudgeResultRecorder,
	cfg *config.EngineConfig,
	engineMetrics *metrics.EngineMetrics,
) *Engine {
	return &Engine{
		issues:    issues,
		prefs:     prefs,
		repo:      repo,
		sched:     sched,
		tones:     tones,
		contents:  contents,
		delivery:  deliveryManager,
		analytics: aggregator,
		recorder:  recorder,
		cfg:       cfg,
		metrics:   engineMetrics,
	}
}

// ProcessStaleIssues scans the user's candidate issues for ones that
// have gone quiet past the stale threshold and creates stale-reminder
// notifications for them. One issue's failure never stops the rest.
func (e *Engine) ProcessStaleIssues(ctx context.Context, userID string, now time.Time) (*ScanResult, error) {
	return e.scan(ctx, userID, now, TriggerStale)
}

// ProcessDeadlineWarnings scans the user's candidate issues for ones
// inside the deadline warning window (or overdue) and creates
// deadline-warning notifications for them.
func (e *Engine) ProcessDeadlineWarnings(ctx context.Context, userID string, now time.Time) (*ScanResult, error) {
	return e.scan(ctx, userID, now, TriggerDeadline)
}

func (e *Engine) scan(ctx context.Context, userID string, now time.Time, trigger string) (*ScanResult, error) {
	ctx, span := tracing.StartScanSpan(ctx, trigger, userID, now)
	defer span.End()

	start := time.Now()
	result, err := e.runScan(ctx, userID, now, trigger)
	if e.metrics != nil {
		e.metrics.RecordScanDuration(ctx, trigger, time.Since(start))
	}

	if result != nil {
		tracing.RecordScanResult(span,
			result.ScannedCount, result.CreatedCount, result.SkippedCount,
			result.CappedCount, len(result.Failures), err)
	} else {
		tracing.RecordScanResult(span, 0, 0, 0, 0, 0, err)
	}

	return result, err
}

func (e *Engine) runScan(ctx context.Context, userID string, now time.Time, trigger string) (*ScanResult, error) {
	prefs, err := e.loadPrefs(ctx, userID)
	if err != nil {
		return nil, err
	}

	typ := domain.TypeStaleReminder
	if trigger == TriggerDeadline {
		typ = domain.TypeDeadlineWarning
	}

	result := &ScanResult{Failures: []Failure{}}

	if !prefs.TypeEnabled(typ) {
		slog.DebugContext(ctx, "notification type disabled, skipping scan",
			slog.String("user_id", userID),
			slog.String("type", typ.String()),
		)
		return result, nil
	}

	issues, err := e.listCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.ScannedCount = len(issues)

	capped, err := e.delivery.CapExceeded(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	for _, issue := range issues {
		// Shutdown stops launching new per-issue work; the in-flight
		// persistence write below always completes.
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		nctx, priority, triggered := e.evaluate(issue, prefs, now, trigger)
		if !triggered {
			result.SkippedCount++
			continue
		}

		if capped {
			result.CappedCount++
			e.recordSkipped(ctx, typ, "frequency_cap")
			continue
		}

		if err := e.createFromContext(ctx, prefs, issue.Key, nctx, priority, now); err != nil {
			if errors.Is(err, domain.ErrDuplicateNotification) {
				slog.DebugContext(ctx, "active notification exists, skipping",
					slog.String("user_id", userID),
					slog.String("issue_key", issue.Key),
					slog.String("type", typ.String()),
				)
				result.SkippedCount++
				e.recordSkipped(ctx, typ, "duplicate")
				continue
			}
			result.Failures = append(result.Failures, Failure{IssueKey: issue.Key, Reason: err.Error()})
			slog.WarnContext(ctx, "failed to create notification",
				slog.String("user_id", userID),
				slog.String("issue_key", issue.Key),
				slog.String("error", err.Error()),
			)
			continue
		}

		result.CreatedCount++
		if e.metrics != nil {
			e.metrics.RecordNotificationCreated(ctx, typ.String(), trigger)
		}
	}

	slog.InfoContext(ctx, "scan completed",
		slog.String("user_id", userID),
		slog.String("trigger", trigger),
		slog.Int("scanned", result.ScannedCount),
		slog.Int("created", result.CreatedCount),
		slog.Int("skipped", result.SkippedCount),
		slog.Int("capped", result.CappedCount),
		slog.Int("failed", len(result.Failures)),
	)

	return result, nil
}

// evaluate applies the trigger's domain rules to one issue and, when it
// fires, builds the type-specific notification context.
func (e *Engine) evaluate(issue domain.IssueSnapshot, prefs *domain.UserPreferences, now time.Time, trigger string) (domain.NotificationContext, domain.Priority, bool) {
	if issue.TerminalStatus() {
		return nil, "", false
	}

	switch trigger {
	case TriggerStale:
		days := issue.DaysSinceUpdate(now)
		if days < prefs.StaleDaysThreshold {
			return nil, "", false
		}
		priority := domain.PriorityLow
		if prefs.StaleDaysThreshold > 0 && days >= 2*prefs.StaleDaysThreshold {
			priority = domain.PriorityMedium
		}
		return domain.StaleContext{Issue: issue, DaysInactive: days}, priority, true

	case TriggerDeadline:
		if issue.DueDate == nil {
			return nil, "", false
		}
		due := *issue.DueDate
		daysRemaining := daysUntil(now, due, prefs.Location())
		overdue := due.Before(now)
		if !overdue && daysRemaining > prefs.DeadlineWarningDays {
			return nil, "", false
		}

		risk := slaBreachRisk(daysRemaining, overdue, prefs.DeadlineWarningDays)
		priority := domain.PriorityLow
		switch risk {
		case domain.RiskHigh:
			priority = domain.PriorityHigh
		case domain.RiskMedium:
			priority = domain.PriorityMedium
		}

		return domain.DeadlineContext{
			Issue:         issue,
			DaysRemaining: daysRemaining,
			Overdue:       overdue,
			SLABreachRisk: risk,
			BufferHours:   bufferHours(now, due),
		}, priority, true
	}

	return nil, "", false
}

// CreateNotification creates a single notification outside the scan
// filters. Dedup and the frequency cap still apply; the type must be
// enabled for the user.
func (e *Engine) CreateNotification(ctx context.Context, userID, issueKey string, typ domain.NotificationType, priority domain.Priority, now time.Time) (*domain.NotificationRecord, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", domain.ErrInvalidInput, typ)
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, priority)
	}
	if userID == "" || issueKey == "" {
		return nil, fmt.Errorf("%w: user_id and issue_key are required", domain.ErrInvalidInput)
	}

	prefs, err := e.loadPrefs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !prefs.TypeEnabled(typ) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTypeDisabled, typ)
	}

	capped, err := e.delivery.CapExceeded(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if capped {
		return nil, fmt.Errorf("%w: user %s", domain.ErrFrequencyCapExceeded, userID)
	}

	issue, err := e.findIssue(ctx, userID, issueKey)
	if err != nil {
		return nil, err
	}

	nctx, err := contextFor(typ, issue, now)
	if err != nil {
		return nil, err
	}

	record, err := e.buildRecord(ctx, prefs, issueKey, nctx, priority, now)
	if err != nil {
		return nil, err
	}

	if err := e.delivery.Create(ctx, record); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.RecordNotificationCreated(ctx, typ.String(), "direct")
	}

	return record, nil
}

// CreateAchievementNotification celebrates a user milestone. There is
// no issue to dedup against, so only the frequency cap gates it.
func (e *Engine) CreateAchievementNotification(ctx context.Context, userID string, actx domain.AchievementContext, now time.Time) (*domain.NotificationRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	if actx.AchievementType == "" {
		return nil, fmt.Errorf("%w: achievement_type is required", domain.ErrInvalidInput)
	}

	prefs, err := e.loadPrefs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !prefs.TypeEnabled(domain.TypeAchievementRecognition) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTypeDisabled, domain.TypeAchievementRecognition)
	}

	capped, err := e.delivery.CapExceeded(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if capped {
		return nil, fmt.Errorf("%w: user %s", domain.ErrFrequencyCapExceeded, userID)
	}

	record, err := e.buildRecord(ctx, prefs, "", actx, domain.PriorityLow, now)
	if err != nil {
		return nil, err
	}

	if err := e.delivery.Create(ctx, record); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.RecordNotificationCreated(ctx, domain.TypeAchievementRecognition.String(), "direct")
	}

	return record, nil
}

// RecordUserResponse applies a response to a notification and refreshes
// the derived effectiveness score. Analytics recording is best-effort.
func (e *Engine) RecordUserResponse(ctx context.Context, recordID string, response domain.ResponseType, now time.Time) error {
	record, err := e.delivery.RecordResponse(ctx, recordID, response, now)
	if err != nil {
		return err
	}

	if record.IssueKey != "" {
		if _, err := e.analytics.RefreshEffectiveness(ctx, record.UserID, record.IssueKey, now); err != nil {
			slog.WarnContext(ctx, "failed to refresh effectiveness score",
				slog.String("user_id", record.UserID),
				slog.String("issue_key", record.IssueKey),
				slog.String("error", err.Error()),
			)
		}
	}

	if e.recorder != nil {
		if err := e.recorder.RecordResponseEvent(ctx, domain.ResponseEventRecord{
			RecordID:    record.ID,
			UserID:      record.UserID,
			IssueKey:    record.IssueKey,
			Type:        record.Type,
			Response:    response,
			RespondedAt: now,
		}); err != nil {
			slog.WarnContext(ctx, "failed to record response event",
				slog.String("record_id", record.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// GetNotificationAnalytics returns the user's response summary over the
// trailing days window.
func (e *Engine) GetNotificationAnalytics(ctx context.Context, userID string, days int, now time.Time) (*analytics.Summary, error) {
	return e.analytics.Summarize(ctx, userID, days, now)
}

func (e *Engine) createFromContext(ctx context.Context, prefs *domain.UserPreferences, issueKey string, nctx domain.NotificationContext, priority domain.Priority, now time.Time) error {
	record, err := e.buildRecord(ctx, prefs, issueKey, nctx, priority, now)
	if err != nil {
		return err
	}
	return e.delivery.Create(ctx, record)
}

// buildRecord resolves tone, renders content, and schedules around
// quiet hours to produce a Pending record ready for the delivery
// manager.
func (e *Engine) buildRecord(ctx context.Context, prefs *domain.UserPreferences, issueKey string, nctx domain.NotificationContext, priority domain.Priority, now time.Time) (*domain.NotificationRecord, error) {
	typ := nctx.ContextType()

	if stale, ok := nctx.(domain.StaleContext); ok {
		stale.NudgeCount = e.nudgeCount(ctx, prefs.UserID, issueKey)
		nctx = stale
	}

	sel := e.tones.Select(prefs.PreferredTone, typ, priority)
	body, err := e.contents.Render(nctx, sel)
	if err != nil {
		return nil, err
	}

	scheduledFor, _, err := e.sched.NextEligible(now, prefs)
	if err != nil {
		return nil, err
	}

	record := domain.NewNotificationRecord(prefs.UserID, issueKey, typ, priority, body, scheduledFor)
	record.CreatedAt = now.UTC()

	return record, nil
}

func (e *Engine) nudgeCount(ctx context.Context, userID, issueKey string) int {
	tracking, err := e.repo.GetTracking(ctx, userID, issueKey)
	if err != nil {
		return 0
	}
	return tracking.NudgeCount
}

func (e *Engine) loadPrefs(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	prefs, err := e.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.DefaultPreferences(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

// listCandidates calls the issue source with bounded retries, since
// transient network failures are expected there.
func (e *Engine) listCandidates(ctx context.Context, userID string) ([]domain.IssueSnapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= e.cfg.StorageMaxAttempts; attempt++ {
		issues, err := e.issues.ListCandidateIssues(ctx, userID)
		if err == nil {
			return issues, nil
		}
		lastErr = err

		if attempt == e.cfg.StorageMaxAttempts {
			break
		}

		backoff := time.Duration(math.Pow(2, float64(attempt-1))) * e.cfg.StorageBackoffBase
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("listing candidate issues: %w", lastErr)
}

// findIssue resolves an issue snapshot for direct creation. When the
// source does not return the issue a minimal snapshot keeps the copy
// meaningful without inventing data.
func (e *Engine) findIssue(ctx context.Context, userID, issueKey string) (domain.IssueSnapshot, error) {
	issues, err := e.listCandidates(ctx, userID)
	if err != nil {
		return domain.IssueSnapshot{}, err
	}
	for _, issue := range issues {
		if issue.Key == issueKey {
			return issue, nil
		}
	}
	return domain.IssueSnapshot{Key: issueKey, Summary: issueKey}, nil
}

func (e *Engine) recordSkipped(ctx context.Context, typ domain.NotificationType, reason string) {
	if e.metrics != nil {
		e.metrics.RecordNotificationSkipped(ctx, typ.String(), reason)
	}
}

func contextFor(typ domain.NotificationType, issue domain.IssueSnapshot, now time.Time) (domain.NotificationContext, error) {
	switch typ {
	case domain.TypeStaleReminder:
		return domain.StaleContext{Issue: issue, DaysInactive: issue.DaysSinceUpdate(now)}, nil
	case domain.TypeDeadlineWarning:
		if issue.DueDate == nil {
			return domain.DeadlineContext{Issue: issue, SLABreachRisk: domain.RiskLow}, nil
		}
		due := *issue.DueDate
		overdue := due.Before(now)
		daysRemaining := daysUntil(now, due, time.UTC)
		return domain.DeadlineContext{
			Issue:         issue,
			DaysRemaining: daysRemaining,
			Overdue:       overdue,
			SLABreachRisk: slaBreachRisk(daysRemaining, overdue, 2),
			BufferHours:   bufferHours(now, due),
		}, nil
	case domain.TypeProgressUpdate:
		return domain.ProgressContext{Issue: issue, DaysSinceUpdate: issue.DaysSinceUpdate(now)}, nil
	case domain.TypeTeamEncouragement:
		return domain.TeamEncouragementContext{Issue: issue}, nil
	}
	return nil, fmt.Errorf("%w: no context for type %q", domain.ErrInvalidInput, typ)
}

// daysUntil counts whole calendar days between now and due in loc.
// Negative when due has passed.
func daysUntil(now, due time.Time, loc *time.Location) int {
	nowLocal := now.In(loc)
	dueLocal := due.In(loc)
	nowDay := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	dueDay := time.Date(dueLocal.Year(), dueLocal.Month(), dueLocal.Day(), 0, 0, 0, 0, loc)
	return int(dueDay.Sub(nowDay).Hours() / 24)
}

// slaBreachRisk buckets days-remaining into a coarse breach estimate.
func slaBreachRisk(daysRemaining int, overdue bool, warningDays int) domain.RiskLevel {
	if overdue || daysRemaining <= 1 {
		return domain.RiskHigh
	}
	mediumCutoff := (warningDays + 1) / 2
	if daysRemaining <= mediumCutoff {
		return domain.RiskMedium
	}
	return domain.RiskLow
}

// bufferHours is the time until breach, floored at zero for overdue
// issues.
func bufferHours(now, due time.Time) int {
	if due.Before(now) {
		return 0
	}
	return int(due.Sub(now).Hours())
}
