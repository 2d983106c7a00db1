package prefstore

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
	"github.com/KasumiMercury/primind-nudge-engine/internal/testutil"
)

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	store := NewStore(client)

	prefs := domain.DefaultPreferences("user-1")
	prefs.Frequency = domain.FrequencyMinimal
	prefs.QuietHours = domain.QuietHours{Start: "21:00", End: "07:30"}
	prefs.PreferredTone = domain.ToneProfessional
	prefs.StaleDaysThreshold = 5
	prefs.Timezone = "Asia/Tokyo"

	if err := store.Set(ctx, prefs); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Frequency != domain.FrequencyMinimal {
		t.Errorf("Frequency = %s, want %s", got.Frequency, domain.FrequencyMinimal)
	}
	if got.QuietHours != prefs.QuietHours {
		t.Errorf("QuietHours = %+v, want %+v", got.QuietHours, prefs.QuietHours)
	}
	if got.PreferredTone != domain.ToneProfessional {
		t.Errorf("PreferredTone = %s, want %s", got.PreferredTone, domain.ToneProfessional)
	}
	if got.StaleDaysThreshold != 5 {
		t.Errorf("StaleDaysThreshold = %d, want 5", got.StaleDaysThreshold)
	}
	if got.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %s, want Asia/Tokyo", got.Timezone)
	}
}

func TestGetUnknownUser(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	store := NewStore(client)

	_, err := store.Get(ctx, "missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	store := NewStore(client)

	if err := store.Set(ctx, nil); !errors.Is(err, ErrInvalidPreferenceData) {
		t.Errorf("nil prefs: err = %v, want ErrInvalidPreferenceData", err)
	}
	if err := store.Set(ctx, &domain.UserPreferences{}); !errors.Is(err, ErrInvalidPreferenceData) {
		t.Errorf("missing user id: err = %v, want ErrInvalidPreferenceData", err)
	}
}

func TestListUserIDs(t *testing.T) {
	ctx := context.Background()
	client := testutil.SetupRedis(ctx, t)
	store := NewStore(client)

	ids, err := store.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no users, got %v", ids)
	}

	for _, userID := range []string{"user-1", "user-2"} {
		if err := store.Set(ctx, domain.DefaultPreferences(userID)); err != nil {
			t.Fatalf("Set(%s): %v", userID, err)
		}
	}
	// Overwrite must not duplicate the membership entry.
	if err := store.Set(ctx, domain.DefaultPreferences("user-1")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	ids, err = store.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"user-1", "user-2"}) {
		t.Errorf("ids = %v, want [user-1 user-2]", ids)
	}
}
