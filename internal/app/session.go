package app

import (
	"time"

	"quiznix-service/internal/domain"
)

// QuizQuestion is one sampled question for the current attempt. Shuffled is
// the per-attempt display order; the embedded canonical question (and its
// answer value) is never mutated.
type QuizQuestion struct {
	domain.Question
	Shuffled []string
}

// Session is one user's progress through the screen sequence. It is owned by
// exactly one interactive connection and mutated by one synchronous
// transition per event; it holds no locks of its own.
type Session struct {
	stage    domain.Stage
	email    string
	name     string
	verified bool
	language domain.Language

	issuedCode string

	category     string
	questions    []QuizQuestion
	numQuestions int
	index        int
	score        int
	startedAt    time.Time
	questionAt   time.Time
	confirmQuit  bool

	stats domain.UserStats
}

// NewSession returns a fresh session at the email stage.
func NewSession() *Session {
	return &Session{
		stage:    domain.StageEmail,
		language: domain.LangEnglish,
		stats:    domain.NewUserStats(),
	}
}

// Stage returns the current screen.
func (s *Session) Stage() domain.Stage { return s.stage }

// Email returns the verified (or pending) email address.
func (s *Session) Email() string { return s.email }

// Name returns the display name entered after verification.
func (s *Session) Name() string { return s.name }

// Verified reports whether the email has passed code verification.
func (s *Session) Verified() bool { return s.verified }

// Language returns the selected content language.
func (s *Session) Language() domain.Language { return s.language }

// Category returns the chosen quiz category.
func (s *Session) Category() string { return s.category }

// Score returns the running score of the active quiz.
func (s *Session) Score() int { return s.score }

// Index returns the current question index of the active quiz.
func (s *Session) Index() int { return s.index }

// NumQuestions returns the configured length of the active quiz.
func (s *Session) NumQuestions() int { return s.numQuestions }

// Stats returns the session's view of the user's cumulative statistics.
func (s *Session) Stats() domain.UserStats { return s.stats }

// ConfirmingQuit reports whether the two-step quit warning is showing.
func (s *Session) ConfirmingQuit() bool { return s.confirmQuit }

// Finished reports quiz completion; there is no separate stored stage, the
// bound on the question index is the signal.
func (s *Session) Finished() bool {
	return s.stage == domain.StageQuiz && s.numQuestions > 0 && s.index >= s.numQuestions
}

// CurrentQuestion returns the question at the current index, if any.
func (s *Session) CurrentQuestion() (QuizQuestion, bool) {
	if s.stage != domain.StageQuiz || s.index >= len(s.questions) {
		return QuizQuestion{}, false
	}
	return s.questions[s.index], true
}

// resetQuiz discards quiz progress, returning to the category screen.
func (s *Session) resetQuiz() {
	s.category = ""
	s.questions = nil
	s.numQuestions = 0
	s.index = 0
	s.score = 0
	s.startedAt = time.Time{}
	s.questionAt = time.Time{}
	s.confirmQuit = false
	s.stage = domain.StageCategory
}
