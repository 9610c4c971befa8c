package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quiznix-service/internal/app"
	"quiznix-service/internal/domain"
)

// SessionHandler serves the interactive quiz flow over a websocket: one
// connection owns one session, and each inbound event triggers exactly one
// synchronous state transition before the next render is written back.
type SessionHandler struct {
	service  *app.Service
	upgrader websocket.Upgrader
}

func NewSessionHandler(service *app.Service) *SessionHandler {
	return &SessionHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type emailPayload struct {
	Email string `json:"email"`
}

type codePayload struct {
	Code string `json:"code"`
}

type namePayload struct {
	Name string `json:"name"`
}

type categoryPayload struct {
	Category string `json:"category"`
}

type startPayload struct {
	Count    int             `json:"count"`
	Language domain.Language `json:"language"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type suggestionPayload struct {
	Question string `json:"question"`
	Options  string `json:"options"`
	Answer   string `json:"answer"`
}

type limitPayload struct {
	Limit int `json:"limit"`
}

type questionView struct {
	Index    int        `json:"index"`
	Total    int        `json:"total"`
	Text     string     `json:"text"`
	Options  []string   `json:"options"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

type stageView struct {
	Stage       domain.Stage    `json:"stage"`
	Title       string          `json:"title"`
	Language    domain.Language `json:"language"`
	Name        string          `json:"name,omitempty"`
	Categories  []string        `json:"categories,omitempty"`
	Counts      []int           `json:"counts,omitempty"`
	Question    *questionView   `json:"question,omitempty"`
	Score       int             `json:"score"`
	ConfirmQuit bool            `json:"confirmQuit,omitempty"`
	Finished    bool            `json:"finished,omitempty"`
}

type answerResult struct {
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timedOut"`
	CorrectAnswer string `json:"correctAnswer"`
	Score         int    `json:"score"`
	Message       string `json:"message"`
}

type completedView struct {
	Title     string           `json:"title"`
	Score     int              `json:"score"`
	Total     int              `json:"total"`
	TimeTaken int              `json:"timeTaken"`
	Stats     domain.UserStats `json:"stats"`
}

// ServeWS upgrades the request and runs the session loop until the client
// disconnects. Writes happen inline in the read loop; nothing else writes to
// the connection.
func (h *SessionHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sess := app.NewSession()
	if _, err := h.service.Resume(ctx, sess); err != nil {
		log.Printf("resume session: %v", err)
	}
	h.writeStage(conn, sess)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.handle(ctx, conn, sess, inbound)
	}
}

func (h *SessionHandler) handle(ctx context.Context, conn *websocket.Conn, sess *app.Session, inbound inboundMessage) {
	switch inbound.Type {
	case "email":
		var p emailPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.report(conn, h.service.SubmitEmail(ctx, sess, p.Email))
	case "code":
		var p codePayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.report(conn, h.service.SubmitCode(ctx, sess, p.Code))
	case "name":
		var p namePayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.report(conn, h.service.SubmitName(ctx, sess, p.Name))
	case "category":
		var p categoryPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.report(conn, h.service.ChooseCategory(ctx, sess, p.Category))
	case "start":
		var p startPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.report(conn, h.service.StartQuiz(ctx, sess, p.Count, p.Language))
	case "answer":
		var p answerPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.handleAnswer(ctx, conn, sess, p.Option)
		return
	case "quit":
		h.report(conn, h.service.RequestQuit(sess))
	case "confirmQuit":
		h.report(conn, h.service.ConfirmQuit(sess))
	case "cancelQuit":
		h.report(conn, h.service.CancelQuit(sess))
	case "home":
		h.report(conn, h.service.GoHome(sess))
	case "suggest":
		h.report(conn, h.service.BeginSuggest(sess))
	case "suggestion":
		var p suggestionPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		h.report(conn, h.service.SubmitSuggestion(ctx, sess, p.Question, p.Options, p.Answer))
	case "language":
		h.report(conn, h.service.ToggleLanguage(sess))
	case "logout":
		h.report(conn, h.service.Logout(ctx, sess))
	case "dashboard":
		h.write(conn, outboundMessage[app.Dashboard]{Type: "dashboard", Payload: app.BuildDashboard(sess)})
		return
	case "leaderboard":
		var p limitPayload
		if !h.decode(conn, inbound.Payload, &p) {
			return
		}
		if p.Limit <= 0 {
			p.Limit = 5
		}
		entries, err := h.service.Top(ctx, p.Limit)
		if err != nil {
			h.writeError(conn, err)
			return
		}
		h.write(conn, outboundMessage[[]domain.LeaderboardEntry]{Type: "leaderboard", Payload: entries})
		return
	default:
		h.writeError(conn, domain.ErrWrongStage)
		return
	}
	h.writeStage(conn, sess)
}

// handleAnswer writes the per-question result and, when the quiz ends, the
// completion summary, before the usual stage render.
func (h *SessionHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, sess *app.Session, option string) {
	outcome, result, err := h.service.SubmitAnswer(ctx, sess, option)
	if err != nil && result == nil {
		h.writeError(conn, err)
		h.writeStage(conn, sess)
		return
	}

	msg := text(sess.Language(), "incorrect")
	if outcome.Correct {
		msg = text(sess.Language(), "correct")
	}
	h.write(conn, outboundMessage[answerResult]{Type: "answerResult", Payload: answerResult{
		Correct:       outcome.Correct,
		TimedOut:      outcome.TimedOut,
		CorrectAnswer: outcome.CorrectAnswer,
		Score:         sess.Score(),
		Message:       msg,
	}})

	if result != nil {
		// Completion may carry a persistence error alongside a valid result.
		if err != nil {
			h.writeError(conn, err)
		}
		h.write(conn, outboundMessage[completedView]{Type: "completed", Payload: completedView{
			Title:     text(sess.Language(), "quiz_completed"),
			Score:     result.Score,
			Total:     result.Total,
			TimeTaken: result.TimeTaken,
			Stats:     result.Stats,
		}})
	}
	h.writeStage(conn, sess)
}

// report surfaces a transition error, if any. Storage-write errors can
// accompany a completed transition, so the stage render still follows.
func (h *SessionHandler) report(conn *websocket.Conn, err error) {
	if err != nil {
		h.writeError(conn, err)
	}
}

func (h *SessionHandler) writeStage(conn *websocket.Conn, sess *app.Session) {
	view := stageView{
		Stage:       sess.Stage(),
		Title:       text(sess.Language(), "welcome"),
		Language:    sess.Language(),
		Name:        sess.Name(),
		Score:       sess.Score(),
		ConfirmQuit: sess.ConfirmingQuit(),
		Finished:    sess.Finished(),
	}
	switch sess.Stage() {
	case domain.StageCategory:
		if cats, err := h.service.Categories(context.Background()); err == nil {
			view.Categories = cats
		}
		view.Title = text(sess.Language(), "choose_category")
	case domain.StageChooseCount:
		view.Counts = []int{5, 10, 15, 20}
		view.Title = text(sess.Language(), "start_quiz")
	case domain.StageQuiz:
		if q, ok := sess.CurrentQuestion(); ok {
			qv := &questionView{
				Index:   sess.Index(),
				Total:   sess.NumQuestions(),
				Text:    q.Text,
				Options: q.Shuffled,
			}
			if deadline, ok := h.service.QuestionDeadline(sess); ok {
				qv.Deadline = &deadline
			}
			view.Question = qv
		}
		if sess.Finished() {
			view.Title = text(sess.Language(), "quiz_completed")
		}
	case domain.StageSuggest:
		view.Title = text(sess.Language(), "suggest_question")
	}
	h.write(conn, outboundMessage[stageView]{Type: "stage", Payload: view})
}

func (h *SessionHandler) writeError(conn *websocket.Conn, err error) {
	h.write(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}

func (h *SessionHandler) decode(conn *websocket.Conn, raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		h.write(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid payload"}})
		return false
	}
	return true
}

func (h *SessionHandler) write(conn *websocket.Conn, msg any) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write error: %v", err)
	}
}
