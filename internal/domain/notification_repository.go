package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=notification_repository.go -destination=notification_repository_mock.go -package=domain

// NotificationRepository persists notification records, dedup claims,
// delivered-window stamps and nudge trackings. Implementations must
// provide read-modify-write consistency per key: ClaimActive is a
// conditional write that fails with ErrDuplicateNotification when the
// dedup key is already held.
type NotificationRepository interface {
	// SaveRecord writes a record keyed by its id. Idempotent under retry.
	SaveRecord(ctx context.Context, record *NotificationRecord) error
	GetRecord(ctx context.Context, id string) (*NotificationRecord, error)

	// ClaimActive atomically claims the (userID, issueKey, typ) dedup key
	// for recordID. Returns ErrDuplicateNotification if another record
	// already holds it.
	ClaimActive(ctx context.Context, userID, issueKey string, typ NotificationType, recordID string) error
	// ReleaseActive frees the dedup key if recordID still holds it.
	ReleaseActive(ctx context.Context, userID, issueKey string, typ NotificationType, recordID string) error
	// ActiveRecordID returns the record currently holding the dedup key,
	// or ErrNotificationNotFound when the key is free.
	ActiveRecordID(ctx context.Context, userID, issueKey string, typ NotificationType) (string, error)

	// ListUserRecords returns the user's records created at or after since,
	// newest last.
	ListUserRecords(ctx context.Context, userID string, since time.Time) ([]*NotificationRecord, error)
	// ListOpenRecords returns non-terminal records created before cutoff,
	// across all users. Used by the expiry sweep.
	ListOpenRecords(ctx context.Context, cutoff time.Time) ([]*NotificationRecord, error)

	// MarkDelivered stamps a successful delivery into the user's trailing
	// delivered window.
	MarkDelivered(ctx context.Context, userID, recordID string, at time.Time) error
	// CountDeliveredSince counts delivered stamps for the user at or after
	// since. Frequency caps are evaluated against this count.
	CountDeliveredSince(ctx context.Context, userID string, since time.Time) (int, error)

	SaveTracking(ctx context.Context, tracking *NudgeTracking) error
	// GetTracking returns ErrTrackingNotFound when no tracking row exists.
	GetTracking(ctx context.Context, userID, issueKey string) (*NudgeTracking, error)
}
