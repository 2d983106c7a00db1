package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-nudge-engine/internal/domain"
)

const (
	recordKeyPrefix     = "nudge:record:"
	activeKeyPrefix     = "nudge:active:"
	userRecordKeyPrefix = "nudge:user:"
	trackingKeyPrefix   = "nudge:tracking:"
	openRecordsKey      = "nudge:open"

	userRecordsSuffix = ":records"
	deliveredSuffix   = ":delivered"

	// Records feed trailing-window analytics, so they outlive the
	// delivery lifecycle by the full analytics horizon.
	recordTTL = 90 * 24 * time.Hour
	// Active dedup claims are released on terminal transition; the TTL
	// is only a backstop against leaked claims.
	activeTTL = 7 * 24 * time.Hour
	// Delivered stamps only need to cover the widest frequency window.
	deliveredRetention = 8 * 24 * time.Hour
)

type recordJSON struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	IssueKey     string    `json:"issue_key"`
	Type         string    `json:"type"`
	Priority     string    `json:"priority"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Tone         string    `json:"tone"`
	ScheduledFor time.Time `json:"scheduled_for"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	DeliveredAt  time.Time `json:"delivered_at,omitzero"`
	RespondedAt  time.Time `json:"responded_at,omitzero"`
	Response     string    `json:"response,omitempty"`
}

type notificationRepository struct {
	client *redis.Client
}

func NewNotificationRepository(client *redis.Client) domain.NotificationRepository {
	return &notificationRepository{
		client: client,
	}
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}

func activeKey(userID, issueKey string, typ domain.NotificationType) string {
	return activeKeyPrefix + userID + ":" + issueKey + ":" + typ.String()
}

func userRecordsKey(userID string) string {
	return userRecordKeyPrefix + userID + userRecordsSuffix
}

func deliveredKey(userID string) string {
	return userRecordKeyPrefix + userID + deliveredSuffix
}

func trackingKey(userID, issueKey string) string {
	return trackingKeyPrefix + userID + ":" + issueKey
}

func (r *notificationRepository) SaveRecord(ctx context.Context, record *domain.NotificationRecord) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecordData
	}

	rec := recordJSON{
		ID:           record.ID,
		UserID:       record.UserID,
		IssueKey:     record.IssueKey,
		Type:         record.Type.String(),
		Priority:     record.Priority.String(),
		Title:        record.Content.Title,
		Message:      record.Content.Message,
		Tone:         record.Content.Tone.String(),
		ScheduledFor: record.ScheduledFor,
		State:        record.State.String(),
		CreatedAt:    record.CreatedAt,
		DeliveredAt:  record.DeliveredAt,
		RespondedAt:  record.RespondedAt,
		Response:     record.Response.String(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return ErrInvalidRecordData
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, recordKey(record.ID), data, recordTTL)
	pipe.ZAdd(ctx, userRecordsKey(record.UserID), redis.Z{
		Score:  float64(record.CreatedAt.Unix()),
		Member: record.ID,
	})
	if record.State.Terminal() {
		pipe.ZRem(ctx, openRecordsKey, record.ID)
	} else {
		pipe.ZAdd(ctx, openRecordsKey, redis.Z{
			Score:  float64(record.CreatedAt.Unix()),
			Member: record.ID,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: save record: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *notificationRepository) GetRecord(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	data, err := r.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("%w: get record: %w", domain.ErrStorage, err)
	}

	var rec recordJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrInvalidRecordData
	}

	return &domain.NotificationRecord{
		ID:       rec.ID,
		UserID:   rec.UserID,
		IssueKey: rec.IssueKey,
		Type:     domain.NotificationType(rec.Type),
		Priority: domain.Priority(rec.Priority),
		Content: domain.NotificationContent{
			Title:   rec.Title,
			Message: rec.Message,
			Tone:    domain.Tone(rec.Tone),
		},
		ScheduledFor: rec.ScheduledFor,
		State:        domain.State(rec.State),
		CreatedAt:    rec.CreatedAt,
		DeliveredAt:  rec.DeliveredAt,
		RespondedAt:  rec.RespondedAt,
		Response:     domain.ResponseType(rec.Response),
	}, nil
}

// ClaimActive is the conditional write backing the dedup invariant: the
// SETNX either claims the key for recordID or observes the holder.
func (r *notificationRepository) ClaimActive(ctx context.Context, userID, issueKey string, typ domain.NotificationType, recordID string) error {
	ok, err := r.client.SetNX(ctx, activeKey(userID, issueKey, typ), recordID, activeTTL).Result()
	if err != nil {
		return fmt.Errorf("%w: claim active: %w", domain.ErrStorage, err)
	}
	if !ok {
		return domain.ErrDuplicateNotification
	}
	return nil
}

func (r *notificationRepository) ReleaseActive(ctx context.Context, userID, issueKey string, typ domain.NotificationType, recordID string) error {
	key := activeKey(userID, issueKey, typ)

	holder, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: release active: %w", domain.ErrStorage, err)
	}
	if holder != recordID {
		// Another record claimed the key after this one went terminal.
		return nil
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: release active: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *notificationRepository) ActiveRecordID(ctx context.Context, userID, issueKey string, typ domain.NotificationType) (string, error) {
	id, err := r.client.Get(ctx, activeKey(userID, issueKey, typ)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotificationNotFound
		}
		return "", fmt.Errorf("%w: active record id: %w", domain.ErrStorage, err)
	}
	return id, nil
}

func (r *notificationRepository) ListUserRecords(ctx context.Context, userID string, since time.Time) ([]*domain.NotificationRecord, error) {
	ids, err := r.client.ZRangeByScore(ctx, userRecordsKey(userID), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list user records: %w", domain.ErrStorage, err)
	}

	records := make([]*domain.NotificationRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.GetRecord(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotificationNotFound) {
				// Record aged out of its TTL; drop the index entry lazily.
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *notificationRepository) ListOpenRecords(ctx context.Context, cutoff time.Time) ([]*domain.NotificationRecord, error) {
	ids, err := r.client.ZRangeByScore(ctx, openRecordsKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list open records: %w", domain.ErrStorage, err)
	}

	records := make([]*domain.NotificationRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.GetRecord(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotificationNotFound) {
				continue
			}
			return nil, err
		}
		if record.State.Terminal() {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, userID, recordID string, at time.Time) error {
	key := deliveredKey(userID)

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.Unix()),
		Member: recordID,
	})
	pipe.ZRemRangeByScore(ctx, key, "-inf",
		strconv.FormatInt(at.Add(-deliveredRetention).Unix(), 10))
	pipe.Expire(ctx, key, deliveredRetention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: mark delivered: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *notificationRepository) CountDeliveredSince(ctx context.Context, userID string, since time.Time) (int, error) {
	count, err := r.client.ZCount(ctx, deliveredKey(userID),
		strconv.FormatInt(since.Unix(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("%w: count delivered: %w", domain.ErrStorage, err)
	}
	return int(count), nil
}

func (r *notificationRepository) SaveTracking(ctx context.Context, tracking *domain.NudgeTracking) error {
	if tracking == nil || tracking.UserID == "" || tracking.IssueKey == "" {
		return ErrInvalidTrackingData
	}

	data, err := json.Marshal(tracking)
	if err != nil {
		return ErrInvalidTrackingData
	}

	if err := r.client.Set(ctx, trackingKey(tracking.UserID, tracking.IssueKey), data, recordTTL).Err(); err != nil {
		return fmt.Errorf("%w: save tracking: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *notificationRepository) GetTracking(ctx context.Context, userID, issueKey string) (*domain.NudgeTracking, error) {
	data, err := r.client.Get(ctx, trackingKey(userID, issueKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTrackingNotFound
		}
		return nil, fmt.Errorf("%w: get tracking: %w", domain.ErrStorage, err)
	}

	var tracking domain.NudgeTracking
	if err := json.Unmarshal(data, &tracking); err != nil {
		return nil, ErrInvalidTrackingData
	}

	return &tracking, nil
}
