package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

const (
	// effectivenessHalfLife is the recency decay half-life applied to
	// response history when scoring an issue.
	effectivenessHalfLife = 14 * 24 * time.Hour
	// effectivenessHorizon bounds how far back response history is read.
	effectivenessHorizon = 90 * 24 * time.Hour

	weightActioned     = 1.0
	weightAcknowledged = 0.6
	weightSnoozed      = 0.3
	weightDismissed    = 0.0
)

// Summary aggregates a user's notification outcomes over a trailing
// window of days.
type Summary struct {
	UserID            string  `json:"user_id"`
	Days              int     `json:"days"`
	TotalSent         int     `json:"total_sent"`
	Acknowledged      int     `json:"acknowledged"`
	Dismissed         int     `json:"dismissed"`
	Actioned          int     `json:"actioned"`
	Snoozed           int     `json:"snoozed"`
	Expired           int     `json:"expired"`
	EffectivenessRate float64 `json:"effectiveness_rate"`
}

// Aggregator computes response statistics and per-issue effectiveness
// scores from persisted notification records.
type Aggregator struct {
	repo domain.NotificationRepository
}

func NewAggregator(repo domain.NotificationRepository) *Aggregator {
	return &Aggregator{repo: repo}
}

// Summarize builds the user's response summary over the last days days,
// evaluated at now. EffectivenessRate is the share of delivered
// notifications that were acknowledged or actioned, 0 when nothing was
// delivered.
func (a *Aggregator) Summarize(ctx context.Context, userID string, days int, now time.Time) (*Summary, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", domain.ErrInvalidInput, days)
	}

	since := now.Add(-time.Duration(days) * 24 * time.Hour)
	records, err := a.repo.ListUserRecords(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	summary := &Summary{UserID: userID, Days: days}
	for _, record := range records {
		if !record.DeliveredAt.IsZero() {
			summary.TotalSent++
		}
		switch record.Response {
		case domain.ResponseAcknowledged:
			summary.Acknowledged++
		case domain.ResponseDismissed:
			summary.Dismissed++
		case domain.ResponseActioned:
			summary.Actioned++
		case domain.ResponseSnoozed:
			summary.Snoozed++
		}
		if record.State == domain.StateExpired {
			summary.Expired++
		}
	}

	if summary.TotalSent > 0 {
		summary.EffectivenessRate = float64(summary.Acknowledged+summary.Actioned) / float64(summary.TotalSent)
	}

	return summary, nil
}

// RefreshEffectiveness recomputes the (user, issue) effectiveness score
// from the issue's response history and writes it into the nudge
// tracking. Returns the new score.
func (a *Aggregator) RefreshEffectiveness(ctx context.Context, userID, issueKey string, now time.Time) (float64, error) {
	records, err := a.repo.ListUserRecords(ctx, userID, now.Add(-effectivenessHorizon))
	if err != nil {
		return 0, err
	}

	score := EffectivenessScore(records, issueKey, now)

	tracking, err := a.repo.GetTracking(ctx, userID, issueKey)
	if err != nil {
		if !errors.Is(err, domain.ErrTrackingNotFound) {
			return 0, err
		}
		tracking = domain.NewNudgeTracking(userID, issueKey)
	}
	tracking.EffectivenessScore = score

	if err := a.repo.SaveTracking(ctx, tracking); err != nil {
		return 0, err
	}

	return score, nil
}

// EffectivenessScore scores how well nudges about issueKey have landed:
// a decay-weighted average of response weights, where recent responses
// dominate. The result is clamped to [0, 1] and an empty history scores
// 0.
func EffectivenessScore(records []*domain.NotificationRecord, issueKey string, now time.Time) float64 {
	var weighted, total float64
	for _, record := range records {
		if record.IssueKey != issueKey || record.Response == "" || record.RespondedAt.IsZero() {
			continue
		}

		age := now.Sub(record.RespondedAt)
		if age < 0 {
			age = 0
		}
		decay := math.Pow(0.5, age.Hours()/effectivenessHalfLife.Hours())

		weighted += responseWeight(record.Response) * decay
		total += decay
	}

	if total == 0 {
		return 0
	}

	score := weighted / total
	return math.Min(1, math.Max(0, score))
}

func responseWeight(response domain.ResponseType) float64 {
	switch response {
	case domain.ResponseActioned:
		return weightActioned
	case domain.ResponseAcknowledged:
		return weightAcknowledged
	case domain.ResponseSnoozed:
		return weightSnoozed
	case domain.ResponseDismissed:
		return weightDismissed
	}
	return 0
}
