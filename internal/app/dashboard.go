package app

import (
	"sort"

	"quiznix-service/internal/domain"
)

// CategoryPerformance is one category's averaged results for display.
type CategoryPerformance struct {
	Category     string  `json:"category"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
	HighestScore int     `json:"highestScore"`
}

// EarnedAchievement pairs an earned id with its catalog entry.
type EarnedAchievement struct {
	ID string `json:"id"`
	domain.Achievement
}

// Dashboard is the stats summary shown on the category screen.
type Dashboard struct {
	Name          string                `json:"name"`
	QuizzesPlayed int                   `json:"quizzesPlayed"`
	TotalPoints   int                   `json:"totalPoints"`
	MinutesSpent  int                   `json:"minutesSpent"`
	Streak        int                   `json:"streak"`
	Categories    []CategoryPerformance `json:"categories"`
	Achievements  []EarnedAchievement   `json:"achievements"`
}

// BuildDashboard summarizes the session's cumulative stats.
func BuildDashboard(sess *Session) Dashboard {
	stats := sess.Stats()
	d := Dashboard{
		Name:          sess.Name(),
		QuizzesPlayed: stats.QuizzesPlayed,
		TotalPoints:   stats.TotalScore,
		MinutesSpent:  stats.TimeSpent / 60,
		Streak:        stats.Streak,
	}
	for category, bucket := range stats.Categories {
		perf := CategoryPerformance{
			Category:     category,
			Attempts:     bucket.Attempts,
			HighestScore: bucket.HighestScore,
		}
		if bucket.Attempts > 0 {
			perf.AverageScore = float64(bucket.TotalScore) / float64(bucket.Attempts)
		}
		d.Categories = append(d.Categories, perf)
	}
	sort.Slice(d.Categories, func(i, j int) bool {
		return d.Categories[i].Category < d.Categories[j].Category
	})
	for _, id := range stats.Achievements {
		if ach, ok := domain.Achievements[id]; ok {
			d.Achievements = append(d.Achievements, EarnedAchievement{ID: id, Achievement: ach})
		}
	}
	return d
}
