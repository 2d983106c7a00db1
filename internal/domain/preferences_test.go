package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseClockMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"midnight", "00:00", 0, false},
		{"morning", "09:00", 540, false},
		{"evening", "18:30", 1110, false},
		{"last minute", "23:59", 1439, false},
		{"hour out of range", "24:00", 0, true},
		{"minute out of range", "12:60", 0, true},
		{"garbage", "noon", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClockMinutes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClockMinutes(%q) expected error", tt.input)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error should wrap ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClockMinutes(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseClockMinutes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeliveryCap(t *testing.T) {
	tests := []struct {
		freq       NotificationFrequency
		wantMax    int
		wantWindow time.Duration
	}{
		{FrequencyGentle, 1, 24 * time.Hour},
		{FrequencyModerate, 3, 24 * time.Hour},
		{FrequencyMinimal, 1, 7 * 24 * time.Hour},
	}

	for _, tt := range tests {
		max, window := tt.freq.DeliveryCap()
		if max != tt.wantMax || window != tt.wantWindow {
			t.Errorf("%s cap = (%d, %s), want (%d, %s)", tt.freq, max, window, tt.wantMax, tt.wantWindow)
		}
	}
}

func TestTypeEnabled(t *testing.T) {
	prefs := DefaultPreferences("user-1")

	if !prefs.TypeEnabled(TypeStaleReminder) {
		t.Error("stale-reminder should be enabled by default")
	}
	if prefs.TypeEnabled(TypeProgressUpdate) {
		t.Error("progress-update should not be enabled by default")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	prefs := DefaultPreferences("user-1")
	prefs.Timezone = "Not/AZone"

	if loc := prefs.Location(); loc != time.UTC {
		t.Errorf("unknown timezone should fall back to UTC, got %v", loc)
	}
}
