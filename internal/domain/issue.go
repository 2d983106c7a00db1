package domain

import (
	"strings"
	"time"
)

// IssueSnapshot is a read-only view of a work item handed to the engine
// by the issue source. Immutable within one engine run.
type IssueSnapshot struct {
	Key         string     `json:"key"`
	Summary     string     `json:"summary"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	LastUpdated time.Time  `json:"last_updated"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Project     string     `json:"project"`
}

// TerminalStatus reports whether the issue can no longer go stale.
func (i IssueSnapshot) TerminalStatus() bool {
	switch strings.ToLower(i.Status) {
	case "done", "closed", "resolved", "cancelled", "canceled":
		return true
	}
	return false
}

// DaysSinceUpdate returns whole days between the last update and now.
func (i IssueSnapshot) DaysSinceUpdate(now time.Time) int {
	if now.Before(i.LastUpdated) {
		return 0
	}
	return int(now.Sub(i.LastUpdated).Hours() / 24)
}
