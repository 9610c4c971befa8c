package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"quiznix-service/internal/domain"
)

// LeaderboardStore appends completed-quiz entries to a JSON array file.
type LeaderboardStore struct {
	path string
	mu   sync.Mutex
}

func NewLeaderboardStore(path string) *LeaderboardStore {
	return &LeaderboardStore{path: path}
}

func (s *LeaderboardStore) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.readAll()
	entries = append(entries, entry)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write leaderboard: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.readAll()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (s *LeaderboardStore) readAll() []domain.LeaderboardEntry {
	var entries []domain.LeaderboardEntry
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}
