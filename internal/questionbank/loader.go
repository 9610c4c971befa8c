package questionbank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quiznix-service/internal/domain"
)

// FileLoader reads one JSON document per category from a directory:
// <dir>/<category>.json holding {"questions": [...]}.
type FileLoader struct {
	dir string
}

// NewFileLoader builds a loader over the given quizdata directory.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// Categories lists category identifiers derived from the directory's
// .json files, sorted for a stable catalog order.
func (l *FileLoader) Categories(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		categories = append(categories, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(categories)
	return categories, nil
}

// Load returns the category's questions in stored order, resolved to the
// requested language. Read or parse failures return an empty slice and the
// error; the caller decides how soft the failure is.
func (l *FileLoader) Load(_ context.Context, category string, lang domain.Language) ([]domain.Question, error) {
	// Category names come from user events; keep them inside the data dir.
	path := filepath.Join(l.dir, filepath.Base(category)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category %s: %w", category, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse category %s: %w", category, err)
	}
	return doc.ResolveAll(lang), nil
}
