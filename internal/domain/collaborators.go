package domain

import "context"

//go:generate mockgen -source=collaborators.go -destination=collaborators_mock.go -package=domain

// IssueSource hands the engine candidate issues for a user. Read-only;
// transient failures are retryable by the caller.
type IssueSource interface {
	ListCandidateIssues(ctx context.Context, userID string) ([]IssueSnapshot, error)
}

// PreferenceStore owns user preferences. The engine only reads a
// snapshot per run.
type PreferenceStore interface {
	// Get returns ErrUserNotFound when the user has no stored preferences.
	Get(ctx context.Context, userID string) (*UserPreferences, error)
	Set(ctx context.Context, prefs *UserPreferences) error
	// ListUserIDs returns every user with stored preferences, for the
	// periodic scan runner.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// EventSink receives record-created and state-changed events for
// presentation layers. Delivery is best-effort and must never block
// the engine, so the methods return nothing.
type EventSink interface {
	RecordCreated(record *NotificationRecord)
	StateChanged(record *NotificationRecord, from State)
}
