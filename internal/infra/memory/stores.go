// Package memory provides in-memory implementations of the app repositories,
// used by tests and as a fallback when no backing stores are configured.
package memory

import (
	"context"
	"sync"

	"quiznix-service/internal/domain"
)

// StatsStore is an in-memory app.StatsRepository.
type StatsStore struct {
	mu    sync.Mutex
	stats map[string]domain.UserStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]domain.UserStats)}
}

func (s *StatsStore) Load(_ context.Context, email string) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.stats[email]; ok {
		return cloneStats(stats), nil
	}
	return domain.NewUserStats(), nil
}

func (s *StatsStore) Update(_ context.Context, email string, fn func(*domain.UserStats)) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[email]
	if !ok {
		stats = domain.NewUserStats()
	}
	stats = cloneStats(stats)
	fn(&stats)
	s.stats[email] = stats
	return cloneStats(stats), nil
}

// cloneStats copies the map and slice so callers never alias stored state.
func cloneStats(s domain.UserStats) domain.UserStats {
	out := s
	out.Categories = make(map[string]domain.CategoryStats, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.Achievements = append([]string(nil), s.Achievements...)
	return out
}

// LeaderboardStore is an in-memory app.LeaderboardRepository.
type LeaderboardStore struct {
	mu      sync.Mutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{}
}

func (s *LeaderboardStore) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *LeaderboardStore) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return topEntries(s.entries, n), nil
}

// Entries returns the full append-only log, for tests.
func (s *LeaderboardStore) Entries() []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LeaderboardEntry(nil), s.entries...)
}

// topEntries picks the n highest scores without reordering the log itself.
func topEntries(entries []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	out := append([]domain.LeaderboardEntry(nil), entries...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SuggestionStore is an in-memory app.SuggestionRepository.
type SuggestionStore struct {
	mu          sync.Mutex
	suggestions []domain.Suggestion
}

func NewSuggestionStore() *SuggestionStore {
	return &SuggestionStore{}
}

func (s *SuggestionStore) Append(_ context.Context, sg domain.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append(s.suggestions, sg)
	return nil
}

// Suggestions returns the recorded suggestions, for tests.
func (s *SuggestionStore) Suggestions() []domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Suggestion(nil), s.suggestions...)
}

// ContinuityStore is an in-memory app.ContinuityRepository.
type ContinuityStore struct {
	mu  sync.Mutex
	rec domain.ContinuityRecord
	set bool
}

func NewContinuityStore() *ContinuityStore {
	return &ContinuityStore{}
}

func (s *ContinuityStore) Load(_ context.Context) (domain.ContinuityRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, s.set, nil
}

func (s *ContinuityStore) Save(_ context.Context, rec domain.ContinuityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.set = true
	return nil
}

func (s *ContinuityStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = domain.ContinuityRecord{}
	s.set = false
	return nil
}
