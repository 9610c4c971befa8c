package app

import (
	"context"

	"quiznix-service/internal/domain"
)

// StatsRepository persists per-user cumulative statistics keyed by email.
// Load returns zeroed stats when the user is absent; unreadable storage is
// treated as absent rather than propagated. Update applies fn to the stored
// value under an atomic read-modify-write and returns the applied value even
// when the final persist fails (the caller surfaces the error but keeps the
// in-memory result).
type StatsRepository interface {
	Load(ctx context.Context, email string) (domain.UserStats, error)
	Update(ctx context.Context, email string, fn func(*domain.UserStats)) (domain.UserStats, error)
}

// LeaderboardRepository is the append-only scoreboard log.
type LeaderboardRepository interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// SuggestionRepository records user-contributed questions, append-only.
type SuggestionRepository interface {
	Append(ctx context.Context, s domain.Suggestion) error
}

// ContinuityRepository holds the single record that lets a returning user
// skip re-verification. Load's second result reports presence.
type ContinuityRepository interface {
	Load(ctx context.Context) (domain.ContinuityRecord, bool, error)
	Save(ctx context.Context, rec domain.ContinuityRecord) error
	Clear(ctx context.Context) error
}

// QuestionBank serves the category catalog and per-category question sets.
type QuestionBank interface {
	Categories(ctx context.Context) ([]string, error)
	Load(ctx context.Context, category string, lang domain.Language) ([]domain.Question, error)
}
