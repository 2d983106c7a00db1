package schedule

import (
	"testing"
	"time"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

func prefsWithQuietHours(start, end, tz string) *domain.UserPreferences {
	prefs := domain.DefaultPreferences("user-1")
	prefs.QuietHours = domain.QuietHours{Start: start, End: end}
	prefs.Timezone = tz
	return prefs
}

func TestNextEligible(t *testing.T) {
	svc := NewService()

	tests := []struct {
		name        string
		quietStart  string
		quietEnd    string
		tz          string
		desired     time.Time
		want        time.Time
		wantShifted bool
	}{
		{
			name:       "outside plain window",
			quietStart: "22:00", quietEnd: "08:00", tz: "UTC",
			desired:     time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
			wantShifted: false,
		},
		{
			name:       "inside evening segment of wrapped window",
			quietStart: "18:00", quietEnd: "09:00", tz: "UTC",
			desired:     time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
			wantShifted: true,
		},
		{
			name:       "inside morning segment of wrapped window",
			quietStart: "18:00", quietEnd: "09:00", tz: "UTC",
			desired:     time.Date(2026, 3, 10, 7, 15, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			wantShifted: true,
		},
		{
			name:       "boundary start is quiet",
			quietStart: "22:00", quietEnd: "23:00", tz: "UTC",
			desired:     time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
			wantShifted: true,
		},
		{
			name:       "boundary end is eligible",
			quietStart: "22:00", quietEnd: "23:00", tz: "UTC",
			desired:     time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
			wantShifted: false,
		},
		{
			name:       "zero length window is disabled",
			quietStart: "08:00", quietEnd: "08:00", tz: "UTC",
			desired:     time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			wantShifted: false,
		},
		{
			name:       "timezone is honored",
			quietStart: "22:00", quietEnd: "08:00", tz: "Asia/Tokyo",
			// 13:30 UTC is 22:30 in Tokyo, inside the window.
			desired:     time.Date(2026, 3, 10, 13, 30, 0, 0, time.UTC),
			want:        time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), // 08:00 JST next day
			wantShifted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := prefsWithQuietHours(tt.quietStart, tt.quietEnd, tt.tz)

			got, shifted, err := svc.NextEligible(tt.desired, prefs)
			if err != nil {
				t.Fatalf("NextEligible: %v", err)
			}
			if shifted != tt.wantShifted {
				t.Errorf("shifted = %v, want %v", shifted, tt.wantShifted)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextEligible = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextEligibleInvalidWindow(t *testing.T) {
	svc := NewService()
	prefs := prefsWithQuietHours("25:00", "08:00", "UTC")

	if _, _, err := svc.NextEligible(time.Now(), prefs); err == nil {
		t.Fatal("expected error for out-of-range quiet hours")
	}
}

// TestNextEligibleNeverInsideWindow sweeps a full day minute by minute
// for both plain and wrapped windows: the returned time must never fall
// inside the quiet window.
func TestNextEligibleNeverInsideWindow(t *testing.T) {
	svc := NewService()

	windows := []struct {
		start, end string
	}{
		{"22:00", "08:00"},
		{"18:00", "09:00"},
		{"09:00", "17:00"},
		{"00:00", "06:30"},
		{"23:30", "00:15"},
	}

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, w := range windows {
		prefs := prefsWithQuietHours(w.start, w.end, "UTC")
		start, end, err := prefs.QuietHours.Minutes()
		if err != nil {
			t.Fatalf("window %s-%s: %v", w.start, w.end, err)
		}

		for minute := 0; minute < 24*60; minute++ {
			desired := day.Add(time.Duration(minute) * time.Minute)
			got, _, err := svc.NextEligible(desired, prefs)
			if err != nil {
				t.Fatalf("window %s-%s minute %d: %v", w.start, w.end, minute, err)
			}

			gotMinute := got.Hour()*60 + got.Minute()
			if InQuietWindow(gotMinute, start, end) {
				t.Fatalf("window %s-%s: NextEligible(%s) = %s falls inside the quiet window",
					w.start, w.end, desired, got)
			}
			if got.Before(desired) {
				t.Fatalf("window %s-%s: NextEligible(%s) = %s went backwards",
					w.start, w.end, desired, got)
			}
		}
	}
}

func TestCapWindowStart(t *testing.T) {
	svc := NewService()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		freq domain.NotificationFrequency
		want time.Time
	}{
		{domain.FrequencyGentle, now.Add(-24 * time.Hour)},
		{domain.FrequencyModerate, now.Add(-24 * time.Hour)},
		{domain.FrequencyMinimal, now.Add(-7 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		if got := svc.CapWindowStart(now, tt.freq); !got.Equal(tt.want) {
			t.Errorf("CapWindowStart(%s) = %s, want %s", tt.freq, got, tt.want)
		}
	}
}
