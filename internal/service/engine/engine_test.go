package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-nudge-engine/internal/config"
	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/eventsink"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/analytics"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/content"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/delivery"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/schedule"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/tone"
)

type engineFixture struct {
	issues *domain.MockIssueSource
	prefs  *domain.MockPreferenceStore
	repo   *domain.MockNotificationRepository
	engine *Engine
}

func newEngineFixture(ctrl *gomock.Controller) *engineFixture {
	cfg := &config.EngineConfig{
		Retention:          7 * 24 * time.Hour,
		StorageMaxAttempts: 1,
		StorageBackoffBase: time.Millisecond,
		DefaultSnooze:      time.Hour,
	}

	f := &engineFixture{
		issues: domain.NewMockIssueSource(ctrl),
		prefs:  domain.NewMockPreferenceStore(ctrl),
		repo:   domain.NewMockNotificationRepository(ctrl),
	}

	sched := schedule.NewService()
	manager := delivery.NewManager(f.repo, f.prefs, nil, eventsink.NewNoopSink(), sched, cfg, nil)
	aggregator := analytics.NewAggregator(f.repo)

	f.engine = New(
		f.issues, f.prefs, f.repo,
		sched, tone.NewAnalyzer(), content.NewGenerator(),
		manager, aggregator, nil, cfg, nil,
	)
	return f
}

func staleIssue(key string, now time.Time, daysInactive int) domain.IssueSnapshot {
	return domain.IssueSnapshot{
		Key:         key,
		Summary:     "Fix login flow",
		Status:      "In Progress",
		LastUpdated: now.Add(-time.Duration(daysInactive) * 24 * time.Hour),
		Project:     "payments",
	}
}

func TestProcessStaleIssuesSchedulesAroundQuietHours(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)

	// 19:30 falls inside the 18:00-09:00 quiet window, so delivery must
	// land at 09:00 the next morning.
	now := time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)
	prefs := domain.DefaultPreferences("user-1")
	prefs.QuietHours = domain.QuietHours{Start: "18:00", End: "09:00"}

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{staleIssue("PROJ-1", now, 5)}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)
	f.repo.EXPECT().GetTracking(gomock.Any(), "user-1", "PROJ-1").Return(nil, domain.ErrTrackingNotFound)
	f.repo.EXPECT().ClaimActive(gomock.Any(), "user-1", "PROJ-1", domain.TypeStaleReminder, gomock.Any()).Return(nil)

	wantScheduled := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	f.repo.EXPECT().SaveRecord(gomock.Any(), gomock.Cond(func(r *domain.NotificationRecord) bool {
		return r.Type == domain.TypeStaleReminder &&
			r.State == domain.StateScheduled &&
			r.ScheduledFor.Equal(wantScheduled)
	})).Return(nil)

	result, err := f.engine.ProcessStaleIssues(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessStaleIssues: %v", err)
	}
	if result.CreatedCount != 1 {
		t.Errorf("CreatedCount = %d, want 1", result.CreatedCount)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %v, want none", result.Failures)
	}
}

func TestProcessStaleIssuesSkipsFreshAndClosedIssues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	closed := staleIssue("PROJ-2", now, 10)
	closed.Status = "Done"

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(domain.DefaultPreferences("user-1"), nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{staleIssue("PROJ-1", now, 1), closed}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)

	result, err := f.engine.ProcessStaleIssues(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessStaleIssues: %v", err)
	}
	if result.CreatedCount != 0 {
		t.Errorf("CreatedCount = %d, want 0", result.CreatedCount)
	}
	if result.SkippedCount != 2 {
		t.Errorf("SkippedCount = %d, want 2", result.SkippedCount)
	}
}

func TestProcessStaleIssuesSkipsDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(domain.DefaultPreferences("user-1"), nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{staleIssue("PROJ-1", now, 5)}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)
	f.repo.EXPECT().GetTracking(gomock.Any(), "user-1", "PROJ-1").Return(nil, domain.ErrTrackingNotFound)
	f.repo.EXPECT().ClaimActive(gomock.Any(), "user-1", "PROJ-1", domain.TypeStaleReminder, gomock.Any()).
		Return(domain.ErrDuplicateNotification)

	result, err := f.engine.ProcessStaleIssues(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessStaleIssues: %v", err)
	}
	if result.CreatedCount != 0 {
		t.Errorf("CreatedCount = %d, want 0", result.CreatedCount)
	}
	if result.SkippedCount != 1 {
		t.Errorf("SkippedCount = %d, want 1", result.SkippedCount)
	}
	if len(result.Failures) != 0 {
		t.Errorf("a duplicate is a skip, not a failure: %v", result.Failures)
	}
}

func TestProcessStaleIssuesCountsCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	prefs := domain.DefaultPreferences("user-1")
	prefs.Frequency = domain.FrequencyGentle

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{staleIssue("PROJ-1", now, 5)}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(1, nil)

	result, err := f.engine.ProcessStaleIssues(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessStaleIssues: %v", err)
	}
	if result.CreatedCount != 0 {
		t.Errorf("CreatedCount = %d, want 0", result.CreatedCount)
	}
	if result.CappedCount != 1 {
		t.Errorf("CappedCount = %d, want 1", result.CappedCount)
	}
}

func TestProcessStaleIssuesDisabledType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)

	prefs := domain.DefaultPreferences("user-1")
	prefs.EnabledTypes = []domain.NotificationType{domain.TypeDeadlineWarning}

	// The issue source must not be consulted at all.
	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil)

	result, err := f.engine.ProcessStaleIssues(context.Background(), "user-1", time.Now())
	if err != nil {
		t.Fatalf("ProcessStaleIssues: %v", err)
	}
	if result.CreatedCount != 0 || result.ScannedCount != 0 {
		t.Errorf("disabled type must produce an empty result, got %+v", result)
	}
}

func TestProcessStaleIssuesCollectsPerIssueFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(domain.DefaultPreferences("user-1"), nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{staleIssue("PROJ-BAD", now, 5), staleIssue("PROJ-OK", now, 5)}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)
	f.repo.EXPECT().GetTracking(gomock.Any(), "user-1", gomock.Any()).Return(nil, domain.ErrTrackingNotFound).Times(2)
	f.repo.EXPECT().ClaimActive(gomock.Any(), "user-1", gomock.Any(), domain.TypeStaleReminder, gomock.Any()).Return(nil).Times(2)
	f.repo.EXPECT().SaveRecord(gomock.Any(), gomock.Cond(func(r *domain.NotificationRecord) bool {
		return r.IssueKey == "PROJ-BAD"
	})).Return(domain.ErrStorage)
	f.repo.EXPECT().ReleaseActive(gomock.Any(), "user-1", "PROJ-BAD", domain.TypeStaleReminder, gomock.Any()).Return(nil)
	f.repo.EXPECT().SaveRecord(gomock.Any(), gomock.Cond(func(r *domain.NotificationRecord) bool {
		return r.IssueKey == "PROJ-OK"
	})).Return(nil)

	result, err := f.engine.ProcessStaleIssues(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessStaleIssues: %v", err)
	}
	if result.CreatedCount != 1 {
		t.Errorf("CreatedCount = %d, want 1", result.CreatedCount)
	}
	if len(result.Failures) != 1 || result.Failures[0].IssueKey != "PROJ-BAD" {
		t.Errorf("Failures = %v, want one for PROJ-BAD", result.Failures)
	}
}

func TestProcessDeadlineWarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Due tomorrow with a two day warning window: high breach risk.
	due := time.Date(2026, 3, 11, 17, 0, 0, 0, time.UTC)
	issue := domain.IssueSnapshot{
		Key:         "PROJ-1",
		Summary:     "Ship the billing migration",
		Status:      "In Progress",
		LastUpdated: now.Add(-time.Hour),
		DueDate:     &due,
	}

	// Quiet hours disabled so the scheduled time is the scan time.
	prefs := domain.DefaultPreferences("user-1")
	prefs.QuietHours = domain.QuietHours{Start: "09:00", End: "09:00"}

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{issue}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)
	f.repo.EXPECT().ClaimActive(gomock.Any(), "user-1", "PROJ-1", domain.TypeDeadlineWarning, gomock.Any()).Return(nil)
	f.repo.EXPECT().SaveRecord(gomock.Any(), gomock.Cond(func(r *domain.NotificationRecord) bool {
		return r.Type == domain.TypeDeadlineWarning &&
			r.Priority == domain.PriorityHigh &&
			r.ScheduledFor.Equal(now)
	})).Return(nil)

	result, err := f.engine.ProcessDeadlineWarnings(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessDeadlineWarnings: %v", err)
	}
	if result.CreatedCount != 1 {
		t.Errorf("CreatedCount = %d, want 1", result.CreatedCount)
	}
}

func TestProcessDeadlineWarningsIgnoresDistantDueDates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	due := now.Add(10 * 24 * time.Hour)
	issue := domain.IssueSnapshot{
		Key:         "PROJ-1",
		Summary:     "Future work",
		Status:      "In Progress",
		LastUpdated: now.Add(-time.Hour),
		DueDate:     &due,
	}
	noDue := domain.IssueSnapshot{
		Key:         "PROJ-2",
		Summary:     "No deadline",
		Status:      "In Progress",
		LastUpdated: now.Add(-time.Hour),
	}

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(domain.DefaultPreferences("user-1"), nil).Times(2)
	f.issues.EXPECT().ListCandidateIssues(gomock.Any(), "user-1").
		Return([]domain.IssueSnapshot{issue, noDue}, nil)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)

	result, err := f.engine.ProcessDeadlineWarnings(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("ProcessDeadlineWarnings: %v", err)
	}
	if result.CreatedCount != 0 {
		t.Errorf("CreatedCount = %d, want 0", result.CreatedCount)
	}
	if result.SkippedCount != 2 {
		t.Errorf("SkippedCount = %d, want 2", result.SkippedCount)
	}
}

func TestSLABreachRisk(t *testing.T) {
	tests := []struct {
		name          string
		daysRemaining int
		overdue       bool
		warningDays   int
		want          domain.RiskLevel
	}{
		{"overdue", -2, true, 5, domain.RiskHigh},
		{"due today", 0, false, 5, domain.RiskHigh},
		{"due tomorrow", 1, false, 5, domain.RiskHigh},
		{"inside half window", 3, false, 5, domain.RiskMedium},
		{"outer window", 5, false, 5, domain.RiskLow},
		{"short window", 2, false, 2, domain.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slaBreachRisk(tt.daysRemaining, tt.overdue, tt.warningDays)
			if got != tt.want {
				t.Errorf("slaBreachRisk(%d, %v, %d) = %s, want %s",
					tt.daysRemaining, tt.overdue, tt.warningDays, got, tt.want)
			}
		})
	}
}

func TestDaysUntilUsesCalendarDays(t *testing.T) {
	loc := time.UTC

	now := time.Date(2026, 3, 10, 23, 0, 0, 0, loc)
	due := time.Date(2026, 3, 11, 1, 0, 0, 0, loc)
	// Two hours apart on the clock, but the due date is tomorrow.
	if got := daysUntil(now, due, loc); got != 1 {
		t.Errorf("daysUntil = %d, want 1", got)
	}

	past := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)
	if got := daysUntil(now, past, loc); got != -2 {
		t.Errorf("daysUntil = %d, want -2", got)
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name     string
		userID   string
		issueKey string
		typ      domain.NotificationType
		priority domain.Priority
	}{
		{"unknown type", "user-1", "PROJ-1", "nonsense", domain.PriorityLow},
		{"unknown priority", "user-1", "PROJ-1", domain.TypeStaleReminder, "urgent-ish"},
		{"missing user", "", "PROJ-1", domain.TypeStaleReminder, domain.PriorityLow},
		{"missing issue", "user-1", "", domain.TypeStaleReminder, domain.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateNotification(ctx, tt.userID, tt.issueKey, tt.typ, tt.priority, now)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateNotificationTypeDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)

	prefs := domain.DefaultPreferences("user-1")
	prefs.EnabledTypes = []domain.NotificationType{domain.TypeDeadlineWarning}

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil)

	_, err := f.engine.CreateNotification(context.Background(), "user-1", "PROJ-1",
		domain.TypeStaleReminder, domain.PriorityLow, time.Now())
	if !errors.Is(err, domain.ErrTypeDisabled) {
		t.Fatalf("err = %v, want ErrTypeDisabled", err)
	}
}

func TestCreateNotificationFrequencyCapExceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	prefs := domain.DefaultPreferences("user-1")
	prefs.Frequency = domain.FrequencyGentle

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil).Times(2)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(1, nil)

	_, err := f.engine.CreateNotification(context.Background(), "user-1", "PROJ-1",
		domain.TypeStaleReminder, domain.PriorityLow, now)
	if !errors.Is(err, domain.ErrFrequencyCapExceeded) {
		t.Fatalf("err = %v, want ErrFrequencyCapExceeded", err)
	}
}

func TestCreateAchievementNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	prefs := domain.DefaultPreferences("user-1")
	prefs.QuietHours = domain.QuietHours{Start: "09:00", End: "09:00"}

	f.prefs.EXPECT().Get(gomock.Any(), "user-1").Return(prefs, nil).Times(2)
	f.repo.EXPECT().CountDeliveredSince(gomock.Any(), "user-1", gomock.Any()).Return(0, nil)
	f.repo.EXPECT().ClaimActive(gomock.Any(), "user-1", gomock.Any(), domain.TypeAchievementRecognition, gomock.Any()).Return(nil)
	f.repo.EXPECT().SaveRecord(gomock.Any(), gomock.Cond(func(r *domain.NotificationRecord) bool {
		return r.Type == domain.TypeAchievementRecognition &&
			r.IssueKey == "" &&
			r.Priority == domain.PriorityLow &&
			r.Content.Tone == domain.ToneEncouraging
	})).Return(nil)

	record, err := f.engine.CreateAchievementNotification(context.Background(), "user-1",
		domain.AchievementContext{AchievementType: "streak", StreakDays: 6}, now)
	if err != nil {
		t.Fatalf("CreateAchievementNotification: %v", err)
	}
	if record.State != domain.StateScheduled {
		t.Errorf("state = %s, want %s", record.State, domain.StateScheduled)
	}
}

func TestCreateAchievementNotificationRequiresType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newEngineFixture(ctrl)

	_, err := f.engine.CreateAchievementNotification(context.Background(), "user-1",
		domain.AchievementContext{}, time.Now())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
