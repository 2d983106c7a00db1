package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"pending to scheduled", StatePending, StateScheduled, true},
		{"pending to delivered skips scheduling", StatePending, StateDelivered, false},
		{"scheduled to delivered", StateScheduled, StateDelivered, true},
		{"scheduled to acknowledged skips delivery", StateScheduled, StateAcknowledged, false},
		{"delivered to acknowledged", StateDelivered, StateAcknowledged, true},
		{"delivered to dismissed", StateDelivered, StateDismissed, true},
		{"delivered to actioned", StateDelivered, StateActioned, true},
		{"delivered to snoozed", StateDelivered, StateSnoozed, true},
		{"delivered back to scheduled", StateDelivered, StateScheduled, false},
		{"snoozed re-enters scheduled", StateSnoozed, StateScheduled, true},
		{"snoozed to delivered directly", StateSnoozed, StateDelivered, false},
		{"pending to expired", StatePending, StateExpired, true},
		{"scheduled to expired", StateScheduled, StateExpired, true},
		{"delivered to expired", StateDelivered, StateExpired, true},
		{"snoozed to expired", StateSnoozed, StateExpired, true},
		{"acknowledged is terminal", StateAcknowledged, StateExpired, false},
		{"dismissed is terminal", StateDismissed, StateScheduled, false},
		{"actioned is terminal", StateActioned, StateDelivered, false},
		{"expired is terminal", StateExpired, StateScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStateTerminal(t *testing.T) {
	terminal := []State{StateAcknowledged, StateDismissed, StateActioned, StateExpired}
	open := []State{StatePending, StateScheduled, StateDelivered, StateSnoozed}

	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestResponseTypeState(t *testing.T) {
	tests := []struct {
		response ResponseType
		want     State
	}{
		{ResponseAcknowledged, StateAcknowledged},
		{ResponseDismissed, StateDismissed},
		{ResponseActioned, StateActioned},
		{ResponseSnoozed, StateSnoozed},
	}

	for _, tt := range tests {
		if got := tt.response.State(); got != tt.want {
			t.Errorf("%s.State() = %s, want %s", tt.response, got, tt.want)
		}
	}
}

func TestNewNotificationRecord(t *testing.T) {
	content := NotificationContent{Title: "t", Message: "m", Tone: ToneCasual}
	record := NewNotificationRecord("user-1", "PROJ-1", TypeStaleReminder, PriorityLow, content, time.Now())

	if record.ID == "" {
		t.Error("record id should be assigned")
	}
	if record.State != StatePending {
		t.Errorf("new record state = %s, want %s", record.State, StatePending)
	}
	if !record.Active() {
		t.Error("new record should be active")
	}
}
