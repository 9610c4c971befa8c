package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"quiznix-service/internal/domain"
)

// ContinuityStore holds the single returning-user record as one JSON object.
// Freshness is judged by the caller against the record's timestamp.
type ContinuityStore struct {
	path string
	mu   sync.Mutex
}

func NewContinuityStore(path string) *ContinuityStore {
	return &ContinuityStore{path: path}
}

func (s *ContinuityStore) Load(_ context.Context) (domain.ContinuityRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.ContinuityRecord{}, false, nil
	}
	var rec domain.ContinuityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.ContinuityRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *ContinuityStore) Save(_ context.Context, rec domain.ContinuityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

func (s *ContinuityStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session record: %w", err)
	}
	return nil
}
