package domain

import "time"

// NudgeTracking is the per-(user, issue) delivery and response history
// summary. NudgeCount increments only on successful first delivery, never
// on snoozed re-delivery.
type NudgeTracking struct {
	UserID             string       `json:"user_id"`
	IssueKey           string       `json:"issue_key"`
	LastNudgeAt        time.Time    `json:"last_nudge_at"`
	NudgeCount         int          `json:"nudge_count"`
	LastResponse       ResponseType `json:"last_response,omitempty"`
	EffectivenessScore float64      `json:"effectiveness_score"`
}

func NewNudgeTracking(userID, issueKey string) *NudgeTracking {
	return &NudgeTracking{
		UserID:   userID,
		IssueKey: issueKey,
	}
}
