package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiznix-service/internal/app"
	"quiznix-service/internal/infra/memory"
	"quiznix-service/internal/questionbank"
)

type captureDeliverer struct {
	lastCode string
}

func (d *captureDeliverer) Deliver(_ context.Context, _ string, code string) error {
	d.lastCode = code
	return nil
}

func TestWebSocketQuizFlow(t *testing.T) {
	deliverer := &captureDeliverer{}
	service := app.NewService(app.Deps{
		Stats:       memory.NewStatsStore(),
		Leaderboard: memory.NewLeaderboardStore(),
		Suggestions: memory.NewSuggestionStore(),
		Continuity:  memory.NewContinuityStore(),
		Bank:        memory.NewStaticBank(sampleBank()),
		Deliverer:   deliverer,
	}, app.Options{})
	handler := NewSessionHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// A fresh connection starts at the email stage.
	_, payload := readNext(conn, t, "stage")
	if payload["stage"] != "email" {
		t.Fatalf("expected email stage, got %v", payload["stage"])
	}

	send(conn, t, "email", map[string]any{"email": "alice@example.com"})
	_, payload = readNext(conn, t, "stage")
	if payload["stage"] != "otp" {
		t.Fatalf("expected otp stage, got %v", payload["stage"])
	}
	if deliverer.lastCode == "" {
		t.Fatalf("expected a delivered code")
	}

	send(conn, t, "code", map[string]any{"code": deliverer.lastCode})
	_, payload = readNext(conn, t, "stage")
	if payload["stage"] != "name" {
		t.Fatalf("expected name stage, got %v", payload["stage"])
	}

	send(conn, t, "name", map[string]any{"name": "Alice"})
	_, payload = readNext(conn, t, "stage")
	if payload["stage"] != "category" {
		t.Fatalf("expected category stage, got %v", payload["stage"])
	}
	cats, ok := payload["categories"].([]any)
	if !ok || len(cats) != 1 || cats[0] != "science" {
		t.Fatalf("expected categories [science], got %v", payload["categories"])
	}

	send(conn, t, "category", map[string]any{"category": "science"})
	_, payload = readNext(conn, t, "stage")
	if payload["stage"] != "choose_num" {
		t.Fatalf("expected choose_num stage, got %v", payload["stage"])
	}

	send(conn, t, "start", map[string]any{"count": 5, "language": "english"})
	_, payload = readNext(conn, t, "stage")
	if payload["stage"] != "quiz" {
		t.Fatalf("expected quiz stage, got %v", payload["stage"])
	}

	// Answer every question with its text-derived correct value.
	for i := 0; i < 5; i++ {
		question, ok := payload["question"].(map[string]any)
		if !ok {
			t.Fatalf("expected a question in stage view, got %v", payload["question"])
		}
		options, _ := question["options"].([]any)
		answer := pickAnswer(t, options)
		send(conn, t, "answer", map[string]any{"option": answer})

		typ, result := readNext(conn, t, "")
		if typ != "answerResult" {
			t.Fatalf("expected answerResult, got %s", typ)
		}
		if result["correct"] != true {
			t.Fatalf("expected a correct answer on question %d, got %v", i, result)
		}
		typ, next := readNext(conn, t, "")
		if i == 4 {
			if typ != "completed" {
				t.Fatalf("expected completed, got %s", typ)
			}
			if next["score"] != float64(5) || next["total"] != float64(5) {
				t.Fatalf("expected 5/5, got %v/%v", next["score"], next["total"])
			}
			_, payload = readNext(conn, t, "stage")
			if payload["finished"] != true {
				t.Fatalf("expected finished stage view, got %v", payload)
			}
		} else {
			if typ != "stage" {
				t.Fatalf("expected stage, got %s", typ)
			}
			payload = next
		}
	}

	// The dashboard reflects the finished quiz.
	send(conn, t, "dashboard", nil)
	_, dash := readNext(conn, t, "dashboard")
	if dash["quizzesPlayed"] != float64(1) {
		t.Fatalf("expected one played quiz, got %v", dash["quizzesPlayed"])
	}

	send(conn, t, "leaderboard", map[string]any{"limit": 5})
	var board struct {
		Type    string           `json:"type"`
		Payload []map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&board); err != nil {
		t.Fatalf("read leaderboard: %v", err)
	}
	if len(board.Payload) != 1 || board.Payload[0]["name"] != "Alice" {
		t.Fatalf("expected Alice on the leaderboard, got %v", board.Payload)
	}
}

func TestWebSocketRejectsBadEmail(t *testing.T) {
	service := app.NewService(app.Deps{
		Stats:       memory.NewStatsStore(),
		Leaderboard: memory.NewLeaderboardStore(),
		Suggestions: memory.NewSuggestionStore(),
		Continuity:  memory.NewContinuityStore(),
		Bank:        memory.NewStaticBank(sampleBank()),
		Deliverer:   &captureDeliverer{},
	}, app.Options{})
	handler := NewSessionHandler(service)

	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "stage")

	send(conn, t, "email", map[string]any{"email": "not-an-address"})
	readNext(conn, t, "error")
	_, payload := readNext(conn, t, "stage")
	if payload["stage"] != "email" {
		t.Fatalf("expected to stay at email stage, got %v", payload["stage"])
	}
}

func send(conn *websocket.Conn, t *testing.T, typ string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// pickAnswer finds the "answer-N" option among the shuffled decoys.
func pickAnswer(t *testing.T, options []any) string {
	t.Helper()
	for _, o := range options {
		s, _ := o.(string)
		if len(s) >= 6 && s[:6] == "answer" {
			return s
		}
	}
	t.Fatalf("no answer option among %v", options)
	return ""
}

func sampleBank() map[string]questionbank.Document {
	doc := questionbank.Document{}
	for i := 0; i < 5; i++ {
		n := byte('0' + i)
		doc.Questions = append(doc.Questions, questionbank.Record{
			Question: "question-" + string(n),
			Options:  []string{"answer-" + string(n), "decoy-a", "decoy-b", "decoy-c"},
			Answer:   "answer-" + string(n),
		})
	}
	return map[string]questionbank.Document{"science": doc}
}
