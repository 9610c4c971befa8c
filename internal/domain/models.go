package domain

// Stage identifies the screen the interactive session is on. The values
// double as wire identifiers for the transport layer.
type Stage string

const (
	StageEmail       Stage = "email"
	StageOTP         Stage = "otp"
	StageName        Stage = "name"
	StageCategory    Stage = "category"
	StageChooseCount Stage = "choose_num"
	StageQuiz        Stage = "quiz"
	StageSuggest     Stage = "suggest"
)

// Language selects which variant of bilingual content is served.
type Language string

const (
	LangEnglish  Language = "english"
	LangHinglish Language = "hinglish"
)

// Valid reports whether l is a known language identifier.
func (l Language) Valid() bool {
	return l == LangEnglish || l == LangHinglish
}

// Question is a category question resolved to a single language.
// Immutable once loaded; per-attempt display shuffles never touch it.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// CategoryStats is the per-category slice of a user's cumulative statistics.
type CategoryStats struct {
	Attempts     int `json:"attempts"`
	TotalScore   int `json:"total_score"`
	HighestScore int `json:"highest_score"`
}

// UserStats accumulates results across every quiz a user completes.
// LastPlayed is a calendar date in "2006-01-02" form, empty before first play.
type UserStats struct {
	QuizzesPlayed int                      `json:"quizzes_played"`
	TotalScore    int                      `json:"total_score"`
	TimeSpent     int                      `json:"time_spent"`
	Categories    map[string]CategoryStats `json:"categories"`
	Achievements  []string                 `json:"achievements"`
	LastPlayed    string                   `json:"last_played"`
	Streak        int                      `json:"streak"`
}

// NewUserStats returns zeroed stats with initialized collections.
func NewUserStats() UserStats {
	return UserStats{
		Categories:   make(map[string]CategoryStats),
		Achievements: []string{},
	}
}

// HasAchievement reports whether the achievement id is already earned.
func (s UserStats) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// LeaderboardEntry is one completed quiz in the append-only scoreboard log.
type LeaderboardEntry struct {
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	Category  string   `json:"category"`
	Timestamp string   `json:"timestamp"`
	Language  Language `json:"language"`
}

// Suggestion is a user-contributed question awaiting review.
type Suggestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Language Language `json:"language"`
}

// ContinuityRecord lets a returning user skip re-verification while the
// record is younger than the configured validity window.
type ContinuityRecord struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// Achievement ids. The suggestor badge exists in the catalog but is granted
// only through an out-of-band review of suggestions, never by the aggregator.
const (
	AchFirstQuiz      = "first_quiz"
	AchHighScore      = "high_score"
	AchCategoryMaster = "category_master"
	AchStreak3        = "streak_3"
	AchStreak7        = "streak_7"
	AchSuggestor      = "suggestor"
)

// Achievement describes a badge for presentation purposes.
type Achievement struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Desc string `json:"desc"`
}

// Achievements is the badge catalog keyed by achievement id.
var Achievements = map[string]Achievement{
	AchFirstQuiz:      {Name: "First Quiz", Icon: "🥇", Desc: "Completed your first quiz"},
	AchHighScore:      {Name: "High Scorer", Icon: "🏆", Desc: "Scored 90% or above in any quiz"},
	AchCategoryMaster: {Name: "Category Master", Icon: "🎯", Desc: "Completed all quizzes in a category"},
	AchStreak3:        {Name: "3-Day Streak", Icon: "🔥", Desc: "Played quizzes for 3 consecutive days"},
	AchStreak7:        {Name: "7-Day Streak", Icon: "🚀", Desc: "Played quizzes for 7 consecutive days"},
	AchSuggestor:      {Name: "Contributor", Icon: "💡", Desc: "Suggested a question that was approved"},
}
