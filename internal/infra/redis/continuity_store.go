// Package redis implements the continuity and stats repositories on Redis,
// for deployments where flat files are not enough.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiznix-service/internal/domain"
)

const continuityKey = "quiznix:session"

// ContinuityStore keeps the returning-user record under a key whose TTL is
// the validity window, so expiry happens in Redis rather than in the app.
type ContinuityStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewContinuityStore(client *redis.Client, ttl time.Duration) *ContinuityStore {
	return &ContinuityStore{client: client, ttl: ttl}
}

func (s *ContinuityStore) Load(ctx context.Context) (domain.ContinuityRecord, bool, error) {
	data, err := s.client.Get(ctx, continuityKey).Bytes()
	if err == redis.Nil {
		return domain.ContinuityRecord{}, false, nil
	}
	if err != nil {
		return domain.ContinuityRecord{}, false, fmt.Errorf("load session record: %w", err)
	}
	var rec domain.ContinuityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.ContinuityRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *ContinuityStore) Save(ctx context.Context, rec domain.ContinuityRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.client.Set(ctx, continuityKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (s *ContinuityStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, continuityKey).Err(); err != nil {
		return fmt.Errorf("clear session record: %w", err)
	}
	return nil
}
