package domain

// RiskLevel is the coarse SLA-breach estimate for a deadline warning.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) String() string {
	return string(r)
}

// NotificationContext is the type-specific payload attached to a
// notification. Each notification type carries exactly the fields it
// needs, so consumers never probe for optional fields.
type NotificationContext interface {
	ContextType() NotificationType
}

// StaleContext accompanies stale-reminder notifications.
type StaleContext struct {
	Issue        IssueSnapshot
	DaysInactive int
	NudgeCount   int
}

func (StaleContext) ContextType() NotificationType { return TypeStaleReminder }

// DeadlineContext accompanies deadline-warning notifications.
type DeadlineContext struct {
	Issue         IssueSnapshot
	DaysRemaining int
	Overdue       bool
	SLABreachRisk RiskLevel
	BufferHours   int
}

func (DeadlineContext) ContextType() NotificationType { return TypeDeadlineWarning }

// ProgressContext accompanies progress-update notifications.
type ProgressContext struct {
	Issue           IssueSnapshot
	DaysSinceUpdate int
}

func (ProgressContext) ContextType() NotificationType { return TypeProgressUpdate }

// TeamEncouragementContext accompanies team-encouragement notifications.
type TeamEncouragementContext struct {
	Issue IssueSnapshot
}

func (TeamEncouragementContext) ContextType() NotificationType { return TypeTeamEncouragement }

// AchievementContext accompanies achievement-recognition notifications.
type AchievementContext struct {
	AchievementType string
	Count           int
	StreakDays      int
	Detail          string
}

func (AchievementContext) ContextType() NotificationType { return TypeAchievementRecognition }
