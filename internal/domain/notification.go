package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies what a notification is nudging the user about.
type NotificationType string

const (
	TypeStaleReminder          NotificationType = "stale-reminder"
	TypeDeadlineWarning        NotificationType = "deadline-warning"
	TypeProgressUpdate         NotificationType = "progress-update"
	TypeTeamEncouragement      NotificationType = "team-encouragement"
	TypeAchievementRecognition NotificationType = "achievement-recognition"
)

func (t NotificationType) String() string {
	return string(t)
}

func (t NotificationType) Valid() bool {
	switch t {
	case TypeStaleReminder, TypeDeadlineWarning, TypeProgressUpdate,
		TypeTeamEncouragement, TypeAchievementRecognition:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// State is the lifecycle state of a NotificationRecord.
type State string

const (
	StatePending      State = "pending"
	StateScheduled    State = "scheduled"
	StateDelivered    State = "delivered"
	StateAcknowledged State = "acknowledged"
	StateDismissed    State = "dismissed"
	StateActioned     State = "actioned"
	StateSnoozed      State = "snoozed"
	StateExpired      State = "expired"
)

func (s State) String() string {
	return string(s)
}

// Terminal reports whether no further transition may leave the state.
func (s State) Terminal() bool {
	switch s {
	case StateAcknowledged, StateDismissed, StateActioned, StateExpired:
		return true
	}
	return false
}

// CanTransition reports whether from → to is a legal lifecycle step.
// Snoozed is the only state that re-enters Scheduled; everything else
// moves forward. Expired is reachable from any non-terminal state.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateExpired {
		return true
	}
	switch from {
	case StatePending:
		return to == StateScheduled
	case StateScheduled:
		return to == StateDelivered
	case StateDelivered:
		return to == StateAcknowledged || to == StateDismissed ||
			to == StateActioned || to == StateSnoozed
	case StateSnoozed:
		return to == StateScheduled
	}
	return false
}

// ResponseType is a user's reaction to a delivered notification.
type ResponseType string

const (
	ResponseAcknowledged ResponseType = "acknowledged"
	ResponseDismissed    ResponseType = "dismissed"
	ResponseActioned     ResponseType = "actioned"
	ResponseSnoozed      ResponseType = "snoozed"
)

func (r ResponseType) String() string {
	return string(r)
}

func (r ResponseType) Valid() bool {
	switch r {
	case ResponseAcknowledged, ResponseDismissed, ResponseActioned, ResponseSnoozed:
		return true
	}
	return false
}

// State returns the lifecycle state a delivered record enters when the
// user responds with r.
func (r ResponseType) State() State {
	switch r {
	case ResponseAcknowledged:
		return StateAcknowledged
	case ResponseDismissed:
		return StateDismissed
	case ResponseActioned:
		return StateActioned
	case ResponseSnoozed:
		return StateSnoozed
	}
	return ""
}

type NotificationContent struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

type NotificationRecord struct {
	ID           string
	UserID       string
	IssueKey     string
	Type         NotificationType
	Priority     Priority
	Content      NotificationContent
	ScheduledFor time.Time
	State        State
	CreatedAt    time.Time
	DeliveredAt  time.Time
	RespondedAt  time.Time
	Response     ResponseType
}

func NewNotificationRecord(
	userID, issueKey string,
	typ NotificationType,
	priority Priority,
	content NotificationContent,
	scheduledFor time.Time,
) *NotificationRecord {
	return &NotificationRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		IssueKey:     issueKey,
		Type:         typ,
		Priority:     priority,
		Content:      content,
		ScheduledFor: scheduledFor,
		State:        StatePending,
		CreatedAt:    time.Now().UTC(),
	}
}

// Active reports whether the record still occupies its dedup key.
func (r *NotificationRecord) Active() bool {
	return !r.State.Terminal()
}
