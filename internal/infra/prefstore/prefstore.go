package prefstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

const (
	prefsKeyPrefix = "nudge:prefs:"
	userSetKey     = "nudge:prefs:users"
)

var ErrInvalidPreferenceData = errors.New("invalid preference data")

type store struct {
	client *redis.Client
}

// NewStore returns a Redis-backed preference store. The engine only
// reads; writes come from the preference-editing surface.
func NewStore(client *redis.Client) domain.PreferenceStore {
	return &store{client: client}
}

func (s *store) Get(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	data, err := s.client.Get(ctx, prefsKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get preferences: %w", domain.ErrStorage, err)
	}

	var prefs domain.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, ErrInvalidPreferenceData
	}

	return &prefs, nil
}

func (s *store) Set(ctx context.Context, prefs *domain.UserPreferences) error {
	if prefs == nil || prefs.UserID == "" {
		return ErrInvalidPreferenceData
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return ErrInvalidPreferenceData
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, prefsKeyPrefix+prefs.UserID, data, 0)
	pipe.SAdd(ctx, userSetKey, prefs.UserID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: set preferences: %w", domain.ErrStorage, err)
	}
	return nil
}

func (s *store) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, userSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list user ids: %w", domain.ErrStorage, err)
	}
	return ids, nil
}
