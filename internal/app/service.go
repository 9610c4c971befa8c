package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"quiznix-service/internal/domain"
	"quiznix-service/internal/otp"
)

const timestampLayout = "2006-01-02 15:04:05"

// Options tunes the quiz flow. Zero values take the baseline defaults; the
// per-question timeout is a variant feature and stays off unless set.
type Options struct {
	MinCount        int           // smallest selectable quiz length (default 5)
	MaxCount        int           // largest selectable quiz length (default 20)
	CountStep       int           // selectable lengths step (default 5)
	DefaultCount    int           // length used when none requested (default 10)
	ContinuityTTL   time.Duration // validity window of the continuity record (default 30 days)
	QuestionTimeout time.Duration // per-question countdown, 0 disables it
}

func (o Options) withDefaults() Options {
	if o.MinCount == 0 {
		o.MinCount = 5
	}
	if o.MaxCount == 0 {
		o.MaxCount = 20
	}
	if o.CountStep == 0 {
		o.CountStep = 5
	}
	if o.DefaultCount == 0 {
		o.DefaultCount = 10
	}
	if o.ContinuityTTL == 0 {
		o.ContinuityTTL = 30 * 24 * time.Hour
	}
	return o
}

// Deps collects the collaborators the service orchestrates.
type Deps struct {
	Stats       StatsRepository
	Leaderboard LeaderboardRepository
	Suggestions SuggestionRepository
	Continuity  ContinuityRepository
	Bank        QuestionBank
	Deliverer   otp.Deliverer
}

// Service drives the session state machine. Validation failures keep the
// current stage and return a domain error; storage write failures may
// accompany a completed transition (the in-memory state keeps the change,
// the error is surfaced for display).
type Service struct {
	deps  Deps
	codes *otp.Generator
	agg   *Aggregator
	opts  Options
	now   func() time.Time
	rnd   *rand.Rand
}

// NewService wires a service with a time-seeded random source.
func NewService(deps Deps, opts Options) *Service {
	opts = opts.withDefaults()
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Service{
		deps:  deps,
		codes: otp.NewGenerator(rnd),
		opts:  opts,
		now:   time.Now,
		rnd:   rnd,
	}
	s.agg = NewAggregator(deps.Stats, s.now)
	return s
}

// WithClock replaces the wall clock, for deterministic tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.agg = NewAggregator(s.deps.Stats, now)
	return s
}

// WithRand replaces the random source, for deterministic tests.
func (s *Service) WithRand(rnd *rand.Rand) *Service {
	s.rnd = rnd
	s.codes = otp.NewGenerator(rnd)
	return s
}

// Resume restores a verified session from the continuity record when one
// exists and is younger than the validity window. Expired records are
// cleared. Returns true when the session jumped to the category screen.
func (s *Service) Resume(ctx context.Context, sess *Session) (bool, error) {
	if sess.stage != domain.StageEmail {
		return false, nil
	}
	rec, ok, err := s.deps.Continuity.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	if s.now().Unix()-rec.Timestamp >= int64(s.opts.ContinuityTTL/time.Second) {
		_ = s.deps.Continuity.Clear(ctx)
		return false, nil
	}
	sess.email = rec.Email
	sess.name = rec.Name
	sess.verified = true
	sess.stage = domain.StageCategory
	if stats, err := s.deps.Stats.Load(ctx, rec.Email); err == nil {
		sess.stats = stats
	}
	return true, nil
}

// SubmitEmail validates the address, issues a code, and requests delivery.
// The session advances to the code screen only when delivery succeeds.
func (s *Service) SubmitEmail(ctx context.Context, sess *Session, email string) error {
	if sess.stage != domain.StageEmail {
		return domain.ErrWrongStage
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return domain.ErrInvalidEmail
	}
	code := s.codes.Issue()
	if err := s.deps.Deliverer.Deliver(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	sess.email = email
	sess.issuedCode = code
	sess.stage = domain.StageOTP
	return nil
}

// SubmitCode checks the entered code against the issued one.
func (s *Service) SubmitCode(_ context.Context, sess *Session, entered string) error {
	if sess.stage != domain.StageOTP {
		return domain.ErrWrongStage
	}
	if !otp.Verify(strings.TrimSpace(entered), sess.issuedCode) {
		return domain.ErrCodeMismatch
	}
	sess.verified = true
	sess.issuedCode = ""
	sess.stage = domain.StageName
	return nil
}

// SubmitName stores the display name, persists the continuity record, and
// loads the user's cumulative stats. A failed continuity write still
// advances the session; the error is returned for display.
func (s *Service) SubmitName(ctx context.Context, sess *Session, name string) error {
	if sess.stage != domain.StageName {
		return domain.ErrWrongStage
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}
	sess.name = name
	if stats, err := s.deps.Stats.Load(ctx, sess.email); err == nil {
		sess.stats = stats
	}
	sess.stage = domain.StageCategory
	if err := s.deps.Continuity.Save(ctx, domain.ContinuityRecord{
		Email:     sess.email,
		Name:      name,
		Timestamp: s.now().Unix(),
	}); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

// Categories returns the bank catalog.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.deps.Bank.Categories(ctx)
}

// ChooseCategory selects a catalog category and moves to the count screen.
func (s *Service) ChooseCategory(ctx context.Context, sess *Session, category string) error {
	if sess.stage != domain.StageCategory {
		return domain.ErrWrongStage
	}
	cats, err := s.deps.Bank.Categories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c == category {
			sess.category = category
			sess.stage = domain.StageChooseCount
			return nil
		}
	}
	return domain.ErrUnknownCategory
}

// StartQuiz loads the category's questions in the session language, draws a
// uniform sample without replacement of the normalized count, attaches an
// independent option permutation to each sampled question, and enters the
// quiz at index 0, score 0.
func (s *Service) StartQuiz(ctx context.Context, sess *Session, count int, lang domain.Language) error {
	if sess.stage != domain.StageChooseCount {
		return domain.ErrWrongStage
	}
	if lang.Valid() {
		sess.language = lang
	}
	questions, err := s.deps.Bank.Load(ctx, sess.category, sess.language)
	if err != nil || len(questions) == 0 {
		return domain.ErrNoQuestions
	}

	count = s.normalizeCount(count)
	if count > len(questions) {
		count = len(questions)
	}

	sampled := make([]QuizQuestion, 0, count)
	for _, i := range s.rnd.Perm(len(questions))[:count] {
		q := questions[i]
		shuffled := make([]string, len(q.Options))
		for dst, src := range s.rnd.Perm(len(q.Options)) {
			shuffled[dst] = q.Options[src]
		}
		sampled = append(sampled, QuizQuestion{Question: q, Shuffled: shuffled})
	}

	now := s.now()
	sess.questions = sampled
	sess.numQuestions = count
	sess.index = 0
	sess.score = 0
	sess.startedAt = now
	sess.questionAt = now
	sess.confirmQuit = false
	sess.stage = domain.StageQuiz
	return nil
}

// normalizeCount clamps the requested length to [min, max] on the step grid.
func (s *Service) normalizeCount(count int) int {
	if count <= 0 {
		count = s.opts.DefaultCount
	}
	count -= count % s.opts.CountStep
	if count < s.opts.MinCount {
		count = s.opts.MinCount
	}
	if count > s.opts.MaxCount {
		count = s.opts.MaxCount
	}
	return count
}

// AnswerOutcome reports how a single submission was scored.
type AnswerOutcome struct {
	Correct       bool
	TimedOut      bool
	CorrectAnswer string
}

// QuizResult summarizes a completed quiz.
type QuizResult struct {
	Score     int
	Total     int
	TimeTaken int // seconds
	Stats     domain.UserStats
}

// SubmitAnswer scores the current question by comparing the selected value to
// the canonical answer (value equality, not position), advances the index,
// and on reaching the configured count runs completion: stats aggregation and
// a leaderboard append. When the optional per-question countdown has elapsed
// before submission, the question scores as unanswered and the session
// auto-advances. The returned result is non-nil exactly when the quiz ended.
func (s *Service) SubmitAnswer(ctx context.Context, sess *Session, option string) (AnswerOutcome, *QuizResult, error) {
	if sess.stage != domain.StageQuiz || sess.Finished() {
		return AnswerOutcome{}, nil, domain.ErrWrongStage
	}
	now := s.now()
	timedOut := s.opts.QuestionTimeout > 0 && now.Sub(sess.questionAt) > s.opts.QuestionTimeout
	if option == "" && !timedOut {
		return AnswerOutcome{}, nil, domain.ErrNoAnswer
	}

	q := sess.questions[sess.index]
	correct := !timedOut && option == q.Answer
	if correct {
		sess.score++
	}
	sess.index++
	sess.questionAt = now
	outcome := AnswerOutcome{Correct: correct, TimedOut: timedOut, CorrectAnswer: q.Answer}

	if sess.index < sess.numQuestions {
		return outcome, nil, nil
	}
	result, err := s.complete(ctx, sess, now)
	return outcome, result, err
}

// complete folds the finished quiz into persistent stats and the leaderboard.
// Scoring cannot exceed the question count, but the score is clamped anyway
// before leaving the state machine.
func (s *Service) complete(ctx context.Context, sess *Session, now time.Time) (*QuizResult, error) {
	score := sess.score
	if score > sess.numQuestions {
		score = sess.numQuestions
	}
	if score < 0 {
		score = 0
	}
	timeTaken := int(now.Sub(sess.startedAt).Seconds())

	totalCategories := 0
	if cats, err := s.deps.Bank.Categories(ctx); err == nil {
		totalCategories = len(cats)
	}

	updated, aggErr := s.agg.Update(ctx, sess.email, sess.category, score, sess.numQuestions, timeTaken, totalCategories)
	sess.stats = updated

	boardErr := s.deps.Leaderboard.Append(ctx, domain.LeaderboardEntry{
		Name:      sess.name,
		Score:     score,
		Category:  sess.category,
		Timestamp: now.Format(timestampLayout),
		Language:  sess.language,
	})

	result := &QuizResult{Score: score, Total: sess.numQuestions, TimeTaken: timeTaken, Stats: updated}
	if aggErr != nil {
		return result, fmt.Errorf("update stats: %w", aggErr)
	}
	if boardErr != nil {
		return result, fmt.Errorf("save leaderboard: %w", boardErr)
	}
	return result, nil
}

// QuestionDeadline returns the wall-clock deadline of the current question
// and whether the countdown variant is active.
func (s *Service) QuestionDeadline(sess *Session) (time.Time, bool) {
	if s.opts.QuestionTimeout <= 0 || sess.stage != domain.StageQuiz || sess.Finished() {
		return time.Time{}, false
	}
	return sess.questionAt.Add(s.opts.QuestionTimeout), true
}

// RequestQuit shows the two-step quit warning during an active quiz.
func (s *Service) RequestQuit(sess *Session) error {
	if sess.stage != domain.StageQuiz || sess.Finished() {
		return domain.ErrWrongStage
	}
	sess.confirmQuit = true
	return nil
}

// ConfirmQuit discards quiz progress and returns to the category screen.
func (s *Service) ConfirmQuit(sess *Session) error {
	if !sess.confirmQuit {
		return domain.ErrWrongStage
	}
	sess.resetQuiz()
	return nil
}

// CancelQuit dismisses the quit warning and resumes the quiz.
func (s *Service) CancelQuit(sess *Session) error {
	sess.confirmQuit = false
	return nil
}

// GoHome leaves the completed-quiz or suggestion screen for the category screen.
func (s *Service) GoHome(sess *Session) error {
	if !sess.Finished() && sess.stage != domain.StageSuggest {
		return domain.ErrWrongStage
	}
	sess.resetQuiz()
	return nil
}

// BeginSuggest moves from the completed-quiz screen to the suggestion form.
func (s *Service) BeginSuggest(sess *Session) error {
	if !sess.Finished() {
		return domain.ErrWrongStage
	}
	sess.stage = domain.StageSuggest
	return nil
}

// SubmitSuggestion records a contributed question. All three fields must be
// non-empty; the answer is accepted as free text and deliberately not checked
// against the options list (contributions are reviewed later). On success the
// session returns to the category screen.
func (s *Service) SubmitSuggestion(ctx context.Context, sess *Session, question, optionsCSV, answer string) error {
	if sess.stage != domain.StageSuggest {
		return domain.ErrWrongStage
	}
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	options := splitOptions(optionsCSV)
	if question == "" || len(options) == 0 || answer == "" {
		return domain.ErrIncompleteSuggestion
	}
	if err := s.deps.Suggestions.Append(ctx, domain.Suggestion{
		Question: question,
		Options:  options,
		Answer:   answer,
		Language: sess.language,
	}); err != nil {
		return fmt.Errorf("save suggestion: %w", err)
	}
	sess.resetQuiz()
	return nil
}

func splitOptions(csv string) []string {
	var options []string
	for _, opt := range strings.Split(csv, ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	return options
}

// ToggleLanguage flips between English and Hinglish on the category screen.
func (s *Service) ToggleLanguage(sess *Session) error {
	if sess.stage != domain.StageCategory {
		return domain.ErrWrongStage
	}
	if sess.language == domain.LangEnglish {
		sess.language = domain.LangHinglish
	} else {
		sess.language = domain.LangEnglish
	}
	return nil
}

// Logout clears the continuity record and resets the session to the email
// screen.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	err := s.deps.Continuity.Clear(ctx)
	*sess = *NewSession()
	if err != nil {
		return fmt.Errorf("clear session record: %w", err)
	}
	return nil
}

// Top returns the highest scores from the leaderboard log.
func (s *Service) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	return s.deps.Leaderboard.Top(ctx, n)
}
