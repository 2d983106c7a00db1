package domain

import (
	"fmt"
	"time"
)

// NotificationFrequency controls how often a user may receive nudges.
type NotificationFrequency string

const (
	FrequencyGentle   NotificationFrequency = "gentle"
	FrequencyModerate NotificationFrequency = "moderate"
	FrequencyMinimal  NotificationFrequency = "minimal"
)

func (f NotificationFrequency) String() string {
	return string(f)
}

func (f NotificationFrequency) Valid() bool {
	switch f {
	case FrequencyGentle, FrequencyModerate, FrequencyMinimal:
		return true
	}
	return false
}

// DeliveryCap returns the maximum number of delivered notifications
// allowed within the trailing window for this frequency.
func (f NotificationFrequency) DeliveryCap() (max int, window time.Duration) {
	switch f {
	case FrequencyGentle:
		return 1, 24 * time.Hour
	case FrequencyModerate:
		return 3, 24 * time.Hour
	case FrequencyMinimal:
		return 1, 7 * 24 * time.Hour
	}
	return 1, 24 * time.Hour
}

// Tone is the user's preferred voice for notification copy.
type Tone string

const (
	ToneEncouraging  Tone = "encouraging"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
)

func (t Tone) String() string {
	return string(t)
}

func (t Tone) Valid() bool {
	switch t {
	case ToneEncouraging, ToneCasual, ToneProfessional:
		return true
	}
	return false
}

// QuietHours is a local wall-clock window during which nothing may be
// scheduled. Start == End means the window is disabled. The window may
// wrap midnight (e.g. 18:00 → 09:00).
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Minutes parses both bounds into minutes since midnight.
func (q QuietHours) Minutes() (start, end int, err error) {
	start, err = ParseClockMinutes(q.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseClockMinutes(q.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseClockMinutes parses an "HH:MM" wall-clock string into minutes
// since midnight.
func ParseClockMinutes(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: invalid clock time %q", ErrInvalidInput, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: clock time %q out of range", ErrInvalidInput, s)
	}
	return h*60 + m, nil
}

type UserPreferences struct {
	UserID              string                `json:"user_id"`
	Frequency           NotificationFrequency `json:"notification_frequency"`
	QuietHours          QuietHours            `json:"quiet_hours"`
	PreferredTone       Tone                  `json:"preferred_tone"`
	StaleDaysThreshold  int                   `json:"stale_days_threshold"`
	DeadlineWarningDays int                   `json:"deadline_warning_days"`
	EnabledTypes        []NotificationType    `json:"enabled_notification_types"`
	Timezone            string                `json:"timezone"`
}

func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:              userID,
		Frequency:           FrequencyModerate,
		QuietHours:          QuietHours{Start: "22:00", End: "08:00"},
		PreferredTone:       ToneEncouraging,
		StaleDaysThreshold:  3,
		DeadlineWarningDays: 2,
		EnabledTypes: []NotificationType{
			TypeStaleReminder,
			TypeDeadlineWarning,
			TypeAchievementRecognition,
		},
		Timezone: "UTC",
	}
}

func (p *UserPreferences) TypeEnabled(t NotificationType) bool {
	for _, enabled := range p.EnabledTypes {
		if enabled == t {
			return true
		}
	}
	return false
}

// Location resolves the user's IANA timezone, falling back to UTC.
func (p *UserPreferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
