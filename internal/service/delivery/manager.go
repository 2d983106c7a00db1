package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/config"
	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/dispatch"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/metrics"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/tracing"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/schedule"
)

// Manager owns the notification lifecycle: it claims dedup keys,
// persists records, registers dispatch tasks, and walks records
// through the state machine as deliveries and responses arrive.
type Manager struct {
	repo    domain.NotificationRepository
	prefs   domain.PreferenceStore
	queue   dispatch.Queue
	sink    domain.EventSink
	sched   *schedule.Service
	cfg     *config.EngineConfig
	metrics *metrics.EngineMetrics
}

// NewManager builds a Manager. queue and engineMetrics may be nil, in
// which case dispatch registration and metric recording are skipped.
func NewManager(
	repo domain.NotificationRepository,
	prefs domain.PreferenceStore,
	queue dispatch.Queue,
	sink domain.EventSink,
	sched *schedule.Service,
	cfg *config.EngineConfig,
	engineMetrics *metrics.EngineMetrics,
) *Manager {
	return &Manager{
		repo:    repo,
		prefs:   prefs,
		queue:   queue,
		sink:    sink,
		sched:   sched,
		cfg:     cfg,
		metrics: engineMetrics,
	}
}

// Create claims the record's dedup key, persists it as Scheduled, and
// registers a dispatch task for its scheduled time. Returns
// ErrDuplicateNotification when another active record already holds
// the dedup key.
func (m *Manager) Create(ctx context.Context, record *domain.NotificationRecord) error {
	ctx, span := tracing.StartDeliverySpan(ctx, record.UserID, record.IssueKey, record.Type.String())
	defer span.End()

	issueKey := dedupIssueKey(record)

	if err := m.repo.ClaimActive(ctx, record.UserID, issueKey, record.Type, record.ID); err != nil {
		tracing.RecordDeliveryResult(span, record.ID, record.ScheduledFor, err)
		return err
	}

	record.State = domain.StateScheduled

	if err := m.persistWithRetry(ctx, record); err != nil {
		if releaseErr := m.repo.ReleaseActive(ctx, record.UserID, issueKey, record.Type, record.ID); releaseErr != nil {
			slog.WarnContext(ctx, "failed to release dedup key after persist failure",
				slog.String("record_id", record.ID),
				slog.String("error", releaseErr.Error()),
			)
		}
		m.recordFailed(ctx, record.Type, "persist")
		tracing.RecordDeliveryResult(span, record.ID, record.ScheduledFor, err)
		return err
	}

	m.sink.RecordCreated(record)

	m.registerDispatch(ctx, record)

	slog.InfoContext(ctx, "notification created",
		slog.String("record_id", record.ID),
		slog.String("user_id", record.UserID),
		slog.String("issue_key", record.IssueKey),
		slog.String("type", record.Type.String()),
		slog.Time("scheduled_for", record.ScheduledFor),
	)

	tracing.RecordDeliveryResult(span, record.ID, record.ScheduledFor, nil)
	return nil
}

// MarkDelivered transitions a Scheduled record to Delivered, stamps the
// delivered window, and counts the nudge on the record's first
// delivery (snoozed re-deliveries do not count again). The frequency cap
// is re-validated at delivery time: a record that would now exceed it
// is expired instead of delivered.
func (m *Manager) MarkDelivered(ctx context.Context, recordID string, at time.Time) error {
	record, err := m.repo.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}

	if !domain.CanTransition(record.State, domain.StateDelivered) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, record.State, domain.StateDelivered)
	}

	capped, err := m.CapExceeded(ctx, record.UserID, at)
	if err != nil {
		return err
	}
	if capped {
		slog.InfoContext(ctx, "delivery suppressed by frequency cap, expiring record",
			slog.String("record_id", record.ID),
			slog.String("user_id", record.UserID),
		)
		return m.expireRecord(ctx, record)
	}

	from := record.State
	// A snoozed record keeps its delivered stamp, so a re-delivery after
	// snooze must not count as a second nudge.
	firstDelivery := record.DeliveredAt.IsZero()
	record.State = domain.StateDelivered
	record.DeliveredAt = at

	if err := m.persistWithRetry(ctx, record); err != nil {
		return err
	}
	if err := m.repo.MarkDelivered(ctx, record.UserID, record.ID, at); err != nil {
		return err
	}

	tracking, err := m.loadTracking(ctx, record.UserID, record.IssueKey)
	if err != nil {
		return err
	}
	tracking.LastNudgeAt = at
	if firstDelivery {
		tracking.NudgeCount++
	}
	if err := m.repo.SaveTracking(ctx, tracking); err != nil {
		return err
	}

	m.sink.StateChanged(record, from)

	slog.InfoContext(ctx, "notification delivered",
		slog.String("record_id", record.ID),
		slog.String("user_id", record.UserID),
		slog.Int("nudge_count", tracking.NudgeCount),
	)

	return nil
}

// RecordResponse applies a user response to a delivered record. A
// snooze re-enters Scheduled with a new scheduled time and a fresh
// dispatch task; every other response is terminal and releases the
// dedup key. Returns the updated record.
func (m *Manager) RecordResponse(ctx context.Context, recordID string, response domain.ResponseType, at time.Time) (*domain.NotificationRecord, error) {
	if !response.Valid() {
		return nil, fmt.Errorf("%w: unknown response %q", domain.ErrInvalidInput, response)
	}

	record, err := m.repo.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	to := response.State()
	if !domain.CanTransition(record.State, to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, record.State, to)
	}

	from := record.State
	record.Response = response
	record.RespondedAt = at

	if response == domain.ResponseSnoozed {
		if err := m.reschedule(ctx, record, at); err != nil {
			return nil, err
		}
	} else {
		record.State = to
		if err := m.persistWithRetry(ctx, record); err != nil {
			return nil, err
		}
		if err := m.repo.ReleaseActive(ctx, record.UserID, dedupIssueKey(record), record.Type, record.ID); err != nil {
			slog.WarnContext(ctx, "failed to release dedup key",
				slog.String("record_id", record.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	tracking, err := m.loadTracking(ctx, record.UserID, record.IssueKey)
	if err != nil {
		return nil, err
	}
	tracking.LastResponse = response
	if err := m.repo.SaveTracking(ctx, tracking); err != nil {
		return nil, err
	}

	m.sink.StateChanged(record, from)

	if m.metrics != nil {
		m.metrics.RecordResponse(ctx, response.String())
	}

	slog.InfoContext(ctx, "response recorded",
		slog.String("record_id", record.ID),
		slog.String("user_id", record.UserID),
		slog.String("response", response.String()),
		slog.String("state", record.State.String()),
	)

	return record, nil
}

// ExpireStale moves every non-terminal record older than the retention
// window to Expired. Per-record failures are logged and collected; the
// sweep never aborts early.
func (m *Manager) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-m.cfg.Retention)

	records, err := m.repo.ListOpenRecords(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, record := range records {
		if record.State.Terminal() {
			continue
		}
		if err := m.expireRecord(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.ID, err))
			continue
		}
		expired++
	}

	if len(errs) > 0 {
		slog.WarnContext(ctx, "expiry sweep completed with failures",
			slog.Int("expired", expired),
			slog.Int("failed", len(errs)),
		)
	}

	return expired, errors.Join(errs...)
}

func (m *Manager) expireRecord(ctx context.Context, record *domain.NotificationRecord) error {
	from := record.State
	record.State = domain.StateExpired

	if err := m.persistWithRetry(ctx, record); err != nil {
		return err
	}
	if err := m.repo.ReleaseActive(ctx, record.UserID, dedupIssueKey(record), record.Type, record.ID); err != nil {
		slog.WarnContext(ctx, "failed to release dedup key on expiry",
			slog.String("record_id", record.ID),
			slog.String("error", err.Error()),
		)
	}

	m.sink.StateChanged(record, from)

	return nil
}

// reschedule moves a snoozed record back to Scheduled at the next
// eligible time after the snooze offset, swapping its dispatch task.
func (m *Manager) reschedule(ctx context.Context, record *domain.NotificationRecord, at time.Time) error {
	prefs, err := m.prefs.Get(ctx, record.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		prefs = domain.DefaultPreferences(record.UserID)
	}

	desired := at.Add(m.cfg.DefaultSnooze)
	scheduledFor, shifted, err := m.sched.NextEligible(desired, prefs)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	record.State = domain.StateScheduled
	record.ScheduledFor = scheduledFor

	if err := m.persistWithRetry(ctx, record); err != nil {
		return err
	}

	if m.queue != nil {
		if err := m.queue.DeleteTask(ctx, record.ID); err != nil {
			slog.WarnContext(ctx, "failed to delete stale dispatch task",
				slog.String("record_id", record.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	m.registerDispatch(ctx, record)

	slog.InfoContext(ctx, "notification snoozed",
		slog.String("record_id", record.ID),
		slog.Time("scheduled_for", scheduledFor),
		slog.Bool("quiet_hours_shifted", shifted),
	)

	return nil
}

func (m *Manager) registerDispatch(ctx context.Context, record *domain.NotificationRecord) {
	if m.queue == nil {
		return
	}

	start := time.Now()
	_, err := m.queue.RegisterDelivery(ctx, &dispatch.DeliveryTask{
		RecordID:   record.ID,
		UserID:     record.UserID,
		ScheduleAt: record.ScheduledFor,
		IssueKey:   record.IssueKey,
		Type:       record.Type.String(),
		Priority:   record.Priority.String(),
		Title:      record.Content.Title,
		Message:    record.Content.Message,
		Tone:       record.Content.Tone.String(),
	})
	if err != nil {
		// The record stays Scheduled; the expiry sweep reclaims it if
		// delivery never confirms.
		slog.ErrorContext(ctx, "failed to register dispatch task",
			slog.String("record_id", record.ID),
			slog.String("error", err.Error()),
		)
		m.recordFailed(ctx, record.Type, "dispatch")
		return
	}

	if m.metrics != nil {
		m.metrics.RecordDeliveryDuration(ctx, time.Since(start))
	}
}

// CapExceeded evaluates the user's frequency cap against the trailing
// delivered window ending at now. Callers use it both as a pre-check
// before creating and as the re-validation at delivery confirmation.
func (m *Manager) CapExceeded(ctx context.Context, userID string, now time.Time) (bool, error) {
	prefs, err := m.prefs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return false, err
		}
		prefs = domain.DefaultPreferences(userID)
	}

	maxDeliveries, _ := prefs.Frequency.DeliveryCap()
	count, err := m.repo.CountDeliveredSince(ctx, userID, m.sched.CapWindowStart(now, prefs.Frequency))
	if err != nil {
		return false, err
	}

	return count >= maxDeliveries, nil
}

func (m *Manager) loadTracking(ctx context.Context, userID, issueKey string) (*domain.NudgeTracking, error) {
	tracking, err := m.repo.GetTracking(ctx, userID, issueKey)
	if err != nil {
		if !errors.Is(err, domain.ErrTrackingNotFound) {
			return nil, err
		}
		tracking = domain.NewNudgeTracking(userID, issueKey)
	}
	return tracking, nil
}

func (m *Manager) persistWithRetry(ctx context.Context, record *domain.NotificationRecord) error {
	var lastErr error
	for attempt := 1; attempt <= m.cfg.StorageMaxAttempts; attempt++ {
		if err := m.repo.SaveRecord(ctx, record); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == m.cfg.StorageMaxAttempts {
			break
		}

		backoff := time.Duration(math.Pow(2, float64(attempt-1))) * m.cfg.StorageBackoffBase
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return lastErr
}

func (m *Manager) recordFailed(ctx context.Context, typ domain.NotificationType, stage string) {
	if m.metrics != nil {
		m.metrics.RecordNotificationFailed(ctx, typ.String(), stage)
	}
}

// dedupIssueKey returns the issue component of the record's dedup key.
// Achievement records have no issue, so each record claims a key of its
// own and only the frequency cap limits them.
func dedupIssueKey(record *domain.NotificationRecord) string {
	if record.IssueKey != "" {
		return record.IssueKey
	}
	return "achievement:" + record.ID
}
