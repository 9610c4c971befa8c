package http

import "quiznix-service/internal/domain"

// uiText carries the localized screen copy. Themes and languages are pure
// presentation data; the state machine underneath is the same for all of them.
var uiText = map[domain.Language]map[string]string{
	domain.LangEnglish: {
		"welcome":          "Welcome to Quiznix",
		"logout":           "Logout",
		"dashboard":        "Dashboard",
		"play_quiz":        "Play Quiz",
		"choose_category":  "Choose a Quiz Category",
		"questions":        "Questions",
		"time_spent":       "Time Spent",
		"total_points":     "Total Points",
		"achievements":     "Your Achievements",
		"no_achievements":  "No achievements yet. Keep playing!",
		"start_quiz":       "Start Quiz",
		"submit":           "Submit",
		"correct":          "Correct!",
		"incorrect":        "Incorrect!",
		"quiz_completed":   "Quiz Completed!",
		"your_score":       "Your Score",
		"suggest_question": "Suggest a Question",
	},
	domain.LangHinglish: {
		"welcome":          "Quiznix mein aapka swagat hai",
		"logout":           "Logout karein",
		"dashboard":        "Dashboard",
		"play_quiz":        "Quiz khelein",
		"choose_category":  "Quiz category chuniye",
		"questions":        "Sawaal",
		"time_spent":       "Kitna time diya",
		"total_points":     "Total points",
		"achievements":     "Aapke achievements",
		"no_achievements":  "Abhi koi achievements nahi. Khelte raho!",
		"start_quiz":       "Quiz shuru karein",
		"submit":           "Submit karein",
		"correct":          "Sahi jawab!",
		"incorrect":        "Galat jawab!",
		"quiz_completed":   "Quiz poora hua!",
		"your_score":       "Aapka score",
		"suggest_question": "Question suggest karein",
	},
}

// text looks up a localized string, falling back to English.
func text(lang domain.Language, key string) string {
	if m, ok := uiText[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return uiText[domain.LangEnglish][key]
}
