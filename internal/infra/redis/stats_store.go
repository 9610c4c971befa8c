package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiznix-service/internal/domain"
)

const updateRetries = 5

// StatsStore keeps one JSON value per user and updates it under WATCH with
// optimistic retry, so concurrent sessions folding results for the same user
// cannot lose each other's writes.
type StatsStore struct {
	client *redis.Client
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client}
}

func (s *StatsStore) Load(ctx context.Context, email string) (domain.UserStats, error) {
	data, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err == redis.Nil {
		return domain.NewUserStats(), nil
	}
	if err != nil {
		return domain.NewUserStats(), fmt.Errorf("load stats: %w", err)
	}
	return decodeStats(data), nil
}

func (s *StatsStore) Update(ctx context.Context, email string, fn func(*domain.UserStats)) (domain.UserStats, error) {
	key := s.key(email)
	var applied domain.UserStats

	txf := func(tx *redis.Tx) error {
		stats := domain.NewUserStats()
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			stats = decodeStats(data)
		}
		fn(&stats)
		applied = stats

		out, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < updateRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if err == nil {
			return applied, nil
		}
		if err != redis.TxFailedErr {
			break
		}
	}
	return applied, fmt.Errorf("update stats: %w", err)
}

func (s *StatsStore) key(email string) string {
	return "quiznix:stats:" + email
}

// decodeStats treats unparseable stored content as empty stats, matching the
// file store's read contract.
func decodeStats(data []byte) domain.UserStats {
	stats := domain.NewUserStats()
	if err := json.Unmarshal(data, &stats); err != nil {
		return domain.NewUserStats()
	}
	if stats.Categories == nil {
		stats.Categories = make(map[string]domain.CategoryStats)
	}
	return stats
}
