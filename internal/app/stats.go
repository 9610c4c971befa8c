package app

import (
	"context"
	"time"

	"quiznix-service/internal/domain"
)

const dateLayout = "2006-01-02"

// highScoreBaseline is the per-quiz question count the high_score predicate
// assumes regardless of the configured quiz length. Inherited behavior; the
// intended threshold is ambiguous, so it is kept as-is rather than derived
// from actual quiz sizes.
const highScoreBaseline = 10

// Aggregator folds completed quiz results into persistent per-user
// statistics and re-evaluates achievement predicates.
type Aggregator struct {
	stats StatsRepository
	now   func() time.Time
}

// NewAggregator builds an aggregator over the stats repository.
func NewAggregator(stats StatsRepository, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{stats: stats, now: now}
}

// Update applies one completed quiz to the user's stats under an atomic
// per-key update: counters, category bucket, calendar-day streak, then a full
// idempotent achievement pass. The applied value is returned even when the
// persist fails, so the caller's in-memory state reflects the change.
func (a *Aggregator) Update(ctx context.Context, email, category string, score, questionCount, timeTaken, totalCategories int) (domain.UserStats, error) {
	_ = questionCount // recorded per entry on the leaderboard, not folded here
	today := a.now()
	return a.stats.Update(ctx, email, func(s *domain.UserStats) {
		if s.Categories == nil {
			s.Categories = make(map[string]domain.CategoryStats)
		}

		s.QuizzesPlayed++
		s.TotalScore += score
		s.TimeSpent += timeTaken

		bucket := s.Categories[category]
		bucket.Attempts++
		bucket.TotalScore += score
		if score > bucket.HighestScore {
			bucket.HighestScore = score
		}
		s.Categories[category] = bucket

		applyStreak(s, today)
		s.LastPlayed = today.Format(dateLayout)

		for _, id := range earnedAchievements(*s, totalCategories) {
			if !s.HasAchievement(id) {
				s.Achievements = append(s.Achievements, id)
			}
		}
	})
}

// applyStreak implements the streak law: a gap of exactly one calendar day
// increments, a larger gap resets to 1, first-ever play starts at 1, and a
// same-day repeat leaves the streak untouched.
func applyStreak(s *domain.UserStats, today time.Time) {
	if s.LastPlayed == "" {
		s.Streak = 1
		return
	}
	last, err := time.Parse(dateLayout, s.LastPlayed)
	if err != nil {
		s.Streak = 1
		return
	}
	switch gap := calendarDays(last, today); {
	case gap == 1:
		s.Streak++
	case gap > 1:
		s.Streak = 1
	}
}

// calendarDays counts whole calendar days between two instants, ignoring the
// time of day.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// earnedAchievements evaluates every predicate against the current stats.
// Pure and re-run in full on each update, so earning twice is a no-op and
// nothing is ever revoked.
func earnedAchievements(s domain.UserStats, totalCategories int) []string {
	var earned []string
	if s.QuizzesPlayed == 1 {
		earned = append(earned, domain.AchFirstQuiz)
	}
	for _, bucket := range s.Categories {
		if float64(bucket.HighestScore) >= 0.9*float64(bucket.Attempts)*highScoreBaseline {
			earned = append(earned, domain.AchHighScore)
			break
		}
	}
	if totalCategories > 0 && len(s.Categories) >= totalCategories {
		earned = append(earned, domain.AchCategoryMaster)
	}
	if s.Streak >= 3 {
		earned = append(earned, domain.AchStreak3)
	}
	if s.Streak >= 7 {
		earned = append(earned, domain.AchStreak7)
	}
	return earned
}
