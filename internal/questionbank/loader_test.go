package questionbank

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quiznix-service/internal/domain"
)

const scienceJSON = `{
  "questions": [
    {"question": "Boiling point of water at sea level?", "options": ["90C", "100C", "110C", "120C"], "answer": "100C"},
    {"question": "Chemical symbol for gold?", "options": ["Au", "Ag", "Gd", "Go"], "answer": "Au"},
    {"english": {"question": "Red planet?", "options": ["Venus", "Mars", "Jupiter", "Saturn"], "answer": "Mars"},
     "hinglish": {"question": "Laal grah kaunsa hai?", "options": ["Venus", "Mars", "Jupiter", "Saturn"], "answer": "Mars"}}
  ]
}`

func writeCategory(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write category: %v", err)
	}
}

func TestCategoriesSorted(t *testing.T) {
	dir := t.TempDir()
	writeCategory(t, dir, "science.json", scienceJSON)
	writeCategory(t, dir, "history.json", `{"questions": []}`)
	writeCategory(t, dir, "notes.txt", "ignored")

	cats, err := NewFileLoader(dir).Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "history" || cats[1] != "science" {
		t.Fatalf("expected [history science], got %v", cats)
	}
}

func TestLoadResolvesLanguage(t *testing.T) {
	dir := t.TempDir()
	writeCategory(t, dir, "science.json", scienceJSON)
	loader := NewFileLoader(dir)

	english, err := loader.Load(context.Background(), "science", domain.LangEnglish)
	if err != nil {
		t.Fatalf("load english: %v", err)
	}
	if len(english) != 3 {
		t.Fatalf("expected 3 questions in stored order, got %d", len(english))
	}
	if english[2].Text != "Red planet?" {
		t.Fatalf("expected english variant, got %q", english[2].Text)
	}

	hinglish, err := loader.Load(context.Background(), "science", domain.LangHinglish)
	if err != nil {
		t.Fatalf("load hinglish: %v", err)
	}
	if hinglish[2].Text != "Laal grah kaunsa hai?" {
		t.Fatalf("expected hinglish variant, got %q", hinglish[2].Text)
	}
	// Monolingual records ignore the language selection.
	if hinglish[0].Text != "Boiling point of water at sea level?" {
		t.Fatalf("monolingual record changed under language selection: %q", hinglish[0].Text)
	}
	if hinglish[2].Answer != "Mars" {
		t.Fatalf("answer value must survive resolution, got %q", hinglish[2].Answer)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	dir := t.TempDir()
	writeCategory(t, dir, "broken.json", "{not json")
	loader := NewFileLoader(dir)

	if qs, err := loader.Load(context.Background(), "broken", domain.LangEnglish); err == nil || len(qs) != 0 {
		t.Fatalf("expected empty result with error for corrupt file, got %d questions, err=%v", len(qs), err)
	}
	if _, err := loader.Load(context.Background(), "missing", domain.LangEnglish); err == nil {
		t.Fatalf("expected error for missing category")
	}
}
