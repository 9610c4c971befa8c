package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"quiznix-service/internal/domain"
)

// SuggestionStore appends newline-delimited JSON records; the file is not a
// JSON array, each line is one suggestion.
type SuggestionStore struct {
	path string
	mu   sync.Mutex
}

func NewSuggestionStore(path string) *SuggestionStore {
	return &SuggestionStore{path: path}
}

func (s *SuggestionStore) Append(_ context.Context, sg domain.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, err := json.Marshal(sg)
	if err != nil {
		return fmt.Errorf("encode suggestion: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open suggestions: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write suggestion: %w", err)
	}
	return nil
}
