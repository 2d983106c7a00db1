package content

import (
	"fmt"
	"math/rand"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/tone"
)

// Generator renders notification title/message copy from type-specific
// templates. Rendering is deterministic: without an injected seed the
// first phrasing variant is always chosen, and identical inputs always
// produce identical output. Copy only ever references fields meaningful
// to the user (issue key, summary, day counts), never internal ids.
type Generator struct {
	pick func(n int) int
}

func NewGenerator() *Generator {
	return &Generator{pick: func(int) int { return 0 }}
}

// NewSeededGenerator selects phrasing variants from a seeded source,
// for deployments that want variety while staying reproducible.
func NewSeededGenerator(seed int64) *Generator {
	rng := rand.New(rand.NewSource(seed))
	return &Generator{pick: rng.Intn}
}

func (g *Generator) Render(nctx domain.NotificationContext, sel tone.Selection) (domain.NotificationContent, error) {
	switch c := nctx.(type) {
	case domain.StaleContext:
		return g.renderStale(c, sel), nil
	case domain.DeadlineContext:
		return g.renderDeadline(c, sel), nil
	case domain.ProgressContext:
		return g.renderProgress(c, sel), nil
	case domain.TeamEncouragementContext:
		return g.renderTeamEncouragement(c, sel), nil
	case domain.AchievementContext:
		return g.renderAchievement(c, sel), nil
	default:
		return domain.NotificationContent{}, fmt.Errorf("%w: no template for context %T", domain.ErrInvalidInput, nctx)
	}
}

func (g *Generator) choose(variants []string) string {
	return variants[g.pick(len(variants))]
}

func (g *Generator) renderStale(c domain.StaleContext, sel tone.Selection) domain.NotificationContent {
	issue := c.Issue
	days := c.DaysInactive

	var title, message string
	switch sel.Tone {
	case domain.ToneEncouraging:
		title = g.choose([]string{
			fmt.Sprintf("%s is waiting for you", issue.Key),
			fmt.Sprintf("A little push for %s?", issue.Key),
		})
		message = g.choose([]string{
			fmt.Sprintf("You've made progress on %q before — it's been quiet for %d days. Even a small update keeps the momentum going.", issue.Summary, days),
			fmt.Sprintf("%q hasn't moved in %d days. You've got this — a quick status note is all it takes.", issue.Summary, days),
		})
		if sel.Constraints.AllowEmphasis {
			title += "!"
		}
	case domain.ToneCasual:
		title = fmt.Sprintf("Psst — %s went quiet", issue.Key)
		message = g.choose([]string{
			fmt.Sprintf("%q has been sitting for %d days. Worth a quick look?", issue.Summary, days),
			fmt.Sprintf("No movement on %q in %d days. Maybe give it a nudge when you get a minute.", issue.Summary, days),
		})
	default:
		title = fmt.Sprintf("%s: no updates for %d days", issue.Key, days)
		message = fmt.Sprintf("%q was last updated %d days ago. Please review and update its status.", issue.Summary, days)
	}

	if c.NudgeCount > 2 && sel.Tone != domain.ToneProfessional {
		message += fmt.Sprintf(" (Reminder %d — feel free to snooze if now isn't the time.)", c.NudgeCount+1)
	}

	return domain.NotificationContent{Title: title, Message: message, Tone: sel.Tone}
}

func (g *Generator) renderDeadline(c domain.DeadlineContext, sel tone.Selection) domain.NotificationContent {
	issue := c.Issue

	var due string
	switch {
	case c.Overdue:
		due = "past its due date"
	case c.DaysRemaining == 0:
		due = "due today"
	case c.DaysRemaining == 1:
		due = "due tomorrow"
	default:
		due = fmt.Sprintf("due in %d days", c.DaysRemaining)
	}

	var title, message string
	switch sel.Tone {
	case domain.ToneEncouraging:
		title = fmt.Sprintf("%s is %s", issue.Key, due)
		message = g.choose([]string{
			fmt.Sprintf("You're close on %q — it's %s. A focused push now will land it comfortably.", issue.Summary, due),
			fmt.Sprintf("%q is %s. You've handled tighter ones before; there's still room to finish well.", issue.Summary, due),
		})
	case domain.ToneCasual:
		title = fmt.Sprintf("Heads up: %s is %s", issue.Key, due)
		message = fmt.Sprintf("%q is %s. Might be a good one to bump up the list.", issue.Summary, due)
	default:
		title = fmt.Sprintf("%s %s", issue.Key, due)
		message = fmt.Sprintf("%q is %s.", issue.Summary, due)
		if c.BufferHours > 0 {
			message += fmt.Sprintf(" Roughly %d hours remain.", c.BufferHours)
		}
	}

	if sel.Constraints.ForbidAlarmist && c.Overdue {
		// Soften without hiding the fact.
		message += " When you have a moment, an updated plan would help."
	}

	return domain.NotificationContent{Title: title, Message: message, Tone: sel.Tone}
}

func (g *Generator) renderProgress(c domain.ProgressContext, sel tone.Selection) domain.NotificationContent {
	issue := c.Issue

	var title, message string
	switch sel.Tone {
	case domain.ToneEncouraging:
		title = fmt.Sprintf("How's %s going?", issue.Key)
		message = fmt.Sprintf("A quick note on %q would keep the momentum visible. Even \"still at it\" counts.", issue.Summary)
	case domain.ToneCasual:
		title = fmt.Sprintf("Quick check-in on %s", issue.Key)
		message = fmt.Sprintf("Anything new on %q? A one-liner status is plenty.", issue.Summary)
	default:
		title = fmt.Sprintf("%s: status update requested", issue.Key)
		message = fmt.Sprintf("Please post a progress update on %q.", issue.Summary)
	}

	if c.DaysSinceUpdate > 0 && sel.Tone == domain.ToneProfessional {
		message += fmt.Sprintf(" The last update was %d days ago.", c.DaysSinceUpdate)
	}

	return domain.NotificationContent{Title: title, Message: message, Tone: sel.Tone}
}

func (g *Generator) renderTeamEncouragement(c domain.TeamEncouragementContext, sel tone.Selection) domain.NotificationContent {
	issue := c.Issue

	var title, message string
	switch sel.Tone {
	case domain.ToneCasual:
		title = fmt.Sprintf("The team's watching %s", issue.Key)
		message = fmt.Sprintf("Folks on %s are keen to see %q land. No pressure, just cheering.", issue.Project, issue.Summary)
	case domain.ToneProfessional:
		title = fmt.Sprintf("%s: team dependency", issue.Key)
		message = fmt.Sprintf("Progress on %q unblocks others on %s.", issue.Summary, issue.Project)
	default:
		title = fmt.Sprintf("Your team's behind you on %s", issue.Key)
		message = fmt.Sprintf("The %s team is rooting for %q. Every bit of progress helps everyone.", issue.Project, issue.Summary)
	}

	return domain.NotificationContent{Title: title, Message: message, Tone: sel.Tone}
}

func (g *Generator) renderAchievement(c domain.AchievementContext, sel tone.Selection) domain.NotificationContent {
	var title, message string

	switch c.AchievementType {
	case "streak":
		title = fmt.Sprintf("%d-day streak", c.StreakDays)
		message = g.choose([]string{
			fmt.Sprintf("That's %d days in a row with progress. Keep the chain going!", c.StreakDays),
			fmt.Sprintf("%d consecutive days of updates — consistency like this compounds.", c.StreakDays),
		})
	case "issues-closed":
		title = fmt.Sprintf("%d issues closed", c.Count)
		message = fmt.Sprintf("You've wrapped up %d issues recently. Nicely done!", c.Count)
	default:
		title = "Nice work"
		message = "You hit a milestone worth celebrating."
		if c.Detail != "" {
			message = c.Detail
		}
	}

	if sel.Constraints.AllowEmphasis && c.AchievementType == "streak" {
		title += "!"
	}

	return domain.NotificationContent{Title: title, Message: message, Tone: sel.Tone}
}
