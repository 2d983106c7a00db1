package tone

import (
	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

// Constraints are the phrasing rules the content generator must obey
// for a selected tone.
type Constraints struct {
	// ForbidAlarmist excludes urgency words ("overdue!", "now", "last
	// chance") from the copy.
	ForbidAlarmist bool
	// AllowBrevity permits dropping pleasantries for a direct message.
	AllowBrevity bool
	// AllowEmphasis permits a single exclamation in the title.
	AllowEmphasis bool
	// LeadWithPositive requires the message to open with an affirmation
	// before the ask.
	LeadWithPositive bool
}

// Selection is the resolved tone plus its phrasing constraints.
type Selection struct {
	Tone        domain.Tone
	Constraints Constraints
}

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Select resolves the tone to write a notification in. Pure: the same
// inputs always yield the same selection.
//
// High-priority deadline warnings override an encouraging preference
// with professional directness so the urgency is not softened away;
// achievement recognitions are always written encouragingly.
func (a *Analyzer) Select(preferred domain.Tone, typ domain.NotificationType, priority domain.Priority) Selection {
	if !preferred.Valid() {
		preferred = domain.ToneEncouraging
	}

	if typ == domain.TypeAchievementRecognition {
		return Selection{
			Tone: domain.ToneEncouraging,
			Constraints: Constraints{
				ForbidAlarmist:   true,
				AllowEmphasis:    true,
				LeadWithPositive: true,
			},
		}
	}

	if typ == domain.TypeDeadlineWarning && priority == domain.PriorityHigh {
		return Selection{
			Tone: domain.ToneProfessional,
			Constraints: Constraints{
				AllowBrevity: true,
			},
		}
	}

	switch preferred {
	case domain.ToneEncouraging:
		return Selection{
			Tone: domain.ToneEncouraging,
			Constraints: Constraints{
				ForbidAlarmist:   true,
				AllowEmphasis:    priority != domain.PriorityHigh,
				LeadWithPositive: true,
			},
		}
	case domain.ToneCasual:
		return Selection{
			Tone: domain.ToneCasual,
			Constraints: Constraints{
				ForbidAlarmist: priority == domain.PriorityLow,
				AllowEmphasis:  true,
			},
		}
	default:
		return Selection{
			Tone: domain.ToneProfessional,
			Constraints: Constraints{
				AllowBrevity: true,
			},
		}
	}
}
