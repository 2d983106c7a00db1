package schedule

import (
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

// Service computes delivery timestamps that honor a user's quiet hours
// and the trailing frequency-cap window. All methods are pure given
// their inputs, so tests never need a real clock.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// NextEligible returns the earliest timestamp >= desired that falls
// outside the user's quiet-hours window, evaluated in the user's
// timezone. The second return reports whether the time was shifted.
func (s *Service) NextEligible(desired time.Time, prefs *domain.UserPreferences) (time.Time, bool, error) {
	start, end, err := prefs.QuietHours.Minutes()
	if err != nil {
		return time.Time{}, false, err
	}

	loc := prefs.Location()
	local := desired.In(loc)
	minute := local.Hour()*60 + local.Minute()

	if !InQuietWindow(minute, start, end) {
		return desired, false, nil
	}

	return quietWindowExit(local, minute, start, end), true, nil
}

// CapWindowStart returns the beginning of the trailing window that the
// frequency cap for freq is evaluated over.
func (s *Service) CapWindowStart(now time.Time, freq domain.NotificationFrequency) time.Time {
	_, window := freq.DeliveryCap()
	return now.Add(-window)
}

// InQuietWindow reports whether a wall-clock minute falls inside the
// half-open window [start, end), where all values are minutes since
// midnight. A window with end < start wraps midnight; start == end is a
// zero-length window that never matches.
func InQuietWindow(minute, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return minute >= start && minute < end
	}
	// Wrapped window, e.g. 18:00 → 09:00.
	return minute >= start || minute < end
}

// quietWindowExit advances local to the end boundary of the quiet
// window, rolling to the next calendar day when the window wraps past
// midnight.
func quietWindowExit(local time.Time, minute, start, end int) time.Time {
	day := local.Day()
	// In a wrapped window the evening segment exits tomorrow; the
	// morning segment exits today.
	if start > end && minute >= start {
		day++
	}
	// In a plain window the exit is always later the same day.
	return time.Date(local.Year(), local.Month(), day, end/60, end%60, 0, 0, local.Location())
}
