package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixzhu97/whatschat-sub002/models"
)

const (
	statusKeyPrefix    = "status:"
	userStatusesPrefix = "user_statuses:"
)

// StatusStore keeps ephemeral statuses in Redis. Every status expires on its
// own TTL; nothing is ever written to Postgres.
type StatusStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStatusStore(redisClient *redis.Client, ttl time.Duration) *StatusStore {
	return &StatusStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// CreateStatus writes the status with its TTL and tracks it in the creator's
// status set.
func (s *StatusStore) CreateStatus(ctx context.Context, status *models.Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	key := statusKeyPrefix + status.ID
	setKey := userStatusesPrefix + status.UserID

	// Use pipeline for atomic operations
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, key, data, s.ttl)
	pipe.SAdd(ctx, setKey, status.ID)
	pipe.Expire(ctx, setKey, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create status: %w", err)
	}

	return nil
}

// UserStatuses returns the user's still-live statuses, pruning expired ids
// from the tracking set.
func (s *StatusStore) UserStatuses(ctx context.Context, userID string) ([]models.Status, error) {
	setKey := userStatusesPrefix + userID

	ids, err := s.redis.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	statuses := make([]models.Status, 0, len(ids))
	var expired []interface{}

	for _, id := range ids {
		data, err := s.redis.Get(ctx, statusKeyPrefix+id).Result()
		if err != nil {
			if err == redis.Nil {
				expired = append(expired, id)
				continue
			}
			return nil, fmt.Errorf("failed to load status %s: %w", id, err)
		}

		var status models.Status
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status %s: %w", id, err)
		}
		statuses = append(statuses, status)
	}

	if len(expired) > 0 {
		s.redis.SRem(ctx, setKey, expired...)
	}

	return statuses, nil
}
