package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/testutil"
)

func newTestRecord(id, userID, issueKey string, createdAt time.Time) *domain.NotificationRecord {
	return &domain.NotificationRecord{
		ID:       id,
		UserID:   userID,
		IssueKey: issueKey,
		Type:     domain.TypeStaleReminder,
		Priority: domain.PriorityLow,
		Content: domain.NotificationContent{
			Title:   issueKey + " is waiting",
			Message: "still open",
			Tone:    domain.ToneCasual,
		},
		ScheduledFor: createdAt.Add(time.Hour),
		State:        domain.StateScheduled,
		CreatedAt:    createdAt,
	}
}

func TestSaveAndGetRecord(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	createdAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	record := newTestRecord("rec-1", "user-1", "PROJ-1", createdAt)
	record.Response = domain.ResponseSnoozed
	record.RespondedAt = createdAt.Add(2 * time.Hour)

	if err := repo.SaveRecord(ctx, record); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	got, err := repo.GetRecord(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}

	if got.ID != record.ID || got.UserID != record.UserID || got.IssueKey != record.IssueKey {
		t.Errorf("identity fields differ: got %+v", got)
	}
	if got.Type != domain.TypeStaleReminder || got.State != domain.StateScheduled {
		t.Errorf("type/state differ: got %s/%s", got.Type, got.State)
	}
	if got.Content.Title != record.Content.Title || got.Content.Tone != domain.ToneCasual {
		t.Errorf("content differs: got %+v", got.Content)
	}
	if !got.ScheduledFor.Equal(record.ScheduledFor) {
		t.Errorf("ScheduledFor = %v, want %v", got.ScheduledFor, record.ScheduledFor)
	}
	if got.Response != domain.ResponseSnoozed || !got.RespondedAt.Equal(record.RespondedAt) {
		t.Errorf("response fields differ: got %s at %v", got.Response, got.RespondedAt)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	_, err := repo.GetRecord(ctx, "missing")
	if !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestSaveRecordRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	if err := repo.SaveRecord(ctx, nil); !errors.Is(err, ErrInvalidRecordData) {
		t.Errorf("nil record: err = %v, want ErrInvalidRecordData", err)
	}
	if err := repo.SaveRecord(ctx, &domain.NotificationRecord{}); !errors.Is(err, ErrInvalidRecordData) {
		t.Errorf("missing id: err = %v, want ErrInvalidRecordData", err)
	}
}

func TestClaimActive(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	if err := repo.ClaimActive(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder, "rec-1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	// Same (user, issue, type) triple is taken.
	err := repo.ClaimActive(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder, "rec-2")
	if !errors.Is(err, domain.ErrDuplicateNotification) {
		t.Fatalf("second claim: err = %v, want ErrDuplicateNotification", err)
	}

	// A different type on the same issue is an independent claim.
	if err := repo.ClaimActive(ctx, "user-1", "PROJ-1", domain.TypeDeadlineWarning, "rec-3"); err != nil {
		t.Fatalf("other type claim: %v", err)
	}

	id, err := repo.ActiveRecordID(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder)
	if err != nil {
		t.Fatalf("ActiveRecordID: %v", err)
	}
	if id != "rec-1" {
		t.Errorf("holder = %s, want rec-1", id)
	}
}

func TestReleaseActive(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	if err := repo.ClaimActive(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder, "rec-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Releasing under the wrong record id keeps the claim.
	if err := repo.ReleaseActive(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder, "rec-other"); err != nil {
		t.Fatalf("foreign release: %v", err)
	}
	if _, err := repo.ActiveRecordID(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder); err != nil {
		t.Fatalf("claim must survive a foreign release: %v", err)
	}

	if err := repo.ReleaseActive(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder, "rec-1"); err != nil {
		t.Fatalf("release: %v", err)
	}

	if err := repo.ClaimActive(ctx, "user-1", "PROJ-1", domain.TypeStaleReminder, "rec-2"); err != nil {
		t.Fatalf("re-claim after release: %v", err)
	}

	// Releasing a key nobody holds is a no-op.
	if err := repo.ReleaseActive(ctx, "user-9", "PROJ-9", domain.TypeStaleReminder, "rec-9"); err != nil {
		t.Fatalf("release of unheld key: %v", err)
	}
}

func TestMarkDeliveredAndCount(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := repo.MarkDelivered(ctx, "user-1", "rec-1", base.Add(-30*time.Hour)); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if err := repo.MarkDelivered(ctx, "user-1", "rec-2", base.Add(-2*time.Hour)); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if err := repo.MarkDelivered(ctx, "user-1", "rec-3", base.Add(-time.Hour)); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}

	count, err := repo.CountDeliveredSince(ctx, "user-1", base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountDeliveredSince: %v", err)
	}
	if count != 2 {
		t.Errorf("count in 24h window = %d, want 2", count)
	}

	count, err = repo.CountDeliveredSince(ctx, "user-1", base.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("CountDeliveredSince: %v", err)
	}
	if count != 3 {
		t.Errorf("count in 48h window = %d, want 3", count)
	}

	count, err = repo.CountDeliveredSince(ctx, "user-2", base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountDeliveredSince: %v", err)
	}
	if count != 0 {
		t.Errorf("count for other user = %d, want 0", count)
	}
}

func TestListUserRecords(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	old := newTestRecord("rec-old", "user-1", "PROJ-1", base.Add(-40*24*time.Hour))
	recent := newTestRecord("rec-recent", "user-1", "PROJ-2", base.Add(-2*24*time.Hour))
	other := newTestRecord("rec-other", "user-2", "PROJ-3", base.Add(-time.Hour))

	for _, record := range []*domain.NotificationRecord{old, recent, other} {
		if err := repo.SaveRecord(ctx, record); err != nil {
			t.Fatalf("SaveRecord(%s): %v", record.ID, err)
		}
	}

	records, err := repo.ListUserRecords(ctx, "user-1", base.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("ListUserRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ID != "rec-recent" {
		t.Errorf("record = %s, want rec-recent", records[0].ID)
	}
}

func TestListOpenRecords(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	open := newTestRecord("rec-open", "user-1", "PROJ-1", base.Add(-10*24*time.Hour))
	fresh := newTestRecord("rec-fresh", "user-1", "PROJ-2", base.Add(-time.Hour))
	dismissed := newTestRecord("rec-done", "user-1", "PROJ-3", base.Add(-10*24*time.Hour))
	dismissed.State = domain.StateDismissed

	for _, record := range []*domain.NotificationRecord{open, fresh, dismissed} {
		if err := repo.SaveRecord(ctx, record); err != nil {
			t.Fatalf("SaveRecord(%s): %v", record.ID, err)
		}
	}

	records, err := repo.ListOpenRecords(ctx, base.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("ListOpenRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ID != "rec-open" {
		t.Errorf("record = %s, want rec-open", records[0].ID)
	}
}

func TestTrackingRoundtrip(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	repo := NewNotificationRepository(client)

	_, err := repo.GetTracking(ctx, "user-1", "PROJ-1")
	if !errors.Is(err, domain.ErrTrackingNotFound) {
		t.Fatalf("err = %v, want ErrTrackingNotFound", err)
	}

	tracking := domain.NewNudgeTracking("user-1", "PROJ-1")
	tracking.NudgeCount = 3
	tracking.LastNudgeAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tracking.LastResponse = domain.ResponseAcknowledged
	tracking.EffectivenessScore = 0.72

	if err := repo.SaveTracking(ctx, tracking); err != nil {
		t.Fatalf("SaveTracking: %v", err)
	}

	got, err := repo.GetTracking(ctx, "user-1", "PROJ-1")
	if err != nil {
		t.Fatalf("GetTracking: %v", err)
	}
	if got.NudgeCount != 3 || got.LastResponse != domain.ResponseAcknowledged {
		t.Errorf("tracking differs: %+v", got)
	}
	if got.EffectivenessScore != 0.72 {
		t.Errorf("EffectivenessScore = %f, want 0.72", got.EffectivenessScore)
	}
	if !got.LastNudgeAt.Equal(tracking.LastNudgeAt) {
		t.Errorf("LastNudgeAt = %v, want %v", got.LastNudgeAt, tracking.LastNudgeAt)
	}

	if err := repo.SaveTracking(ctx, &domain.NudgeTracking{}); !errors.Is(err, ErrInvalidTrackingData) {
		t.Errorf("invalid tracking: err = %v, want ErrInvalidTrackingData", err)
	}
}
