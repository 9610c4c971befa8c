// Package file implements the app repositories over flat JSON files:
// whole-store reads and writes, with unreadable content treated as empty
// rather than failing the operation.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"quiznix-service/internal/domain"
)

// StatsStore keeps every user's stats in one JSON object keyed by email.
type StatsStore struct {
	path string
	mu   sync.Mutex
}

func NewStatsStore(path string) *StatsStore {
	return &StatsStore{path: path}
}

func (s *StatsStore) Load(_ context.Context, email string) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.readAll()
	if stats, ok := all[email]; ok {
		return stats, nil
	}
	return domain.NewUserStats(), nil
}

// Update rewrites the whole store after applying fn to the user's record
// under the store lock. The applied value is returned even when the write
// fails.
func (s *StatsStore) Update(_ context.Context, email string, fn func(*domain.UserStats)) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.readAll()
	stats, ok := all[email]
	if !ok {
		stats = domain.NewUserStats()
	}
	fn(&stats)
	all[email] = stats

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return stats, fmt.Errorf("encode stats: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return stats, fmt.Errorf("write stats: %w", err)
	}
	return stats, nil
}

// readAll swallows missing or corrupt content: a stats file that cannot be
// parsed is an empty store, not an error.
func (s *StatsStore) readAll() map[string]domain.UserStats {
	all := make(map[string]domain.UserStats)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return all
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return make(map[string]domain.UserStats)
	}
	return all
}
