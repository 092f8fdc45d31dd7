package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/KaliBomaye/stratagem/pkg/rating"
)

// MatchStore persists finished-match history as a flat JSON array
// (data/matches.json by default).
type MatchStore struct {
	mu   sync.Mutex
	path string
}

// NewMatchStore creates a MatchStore writing to path.
func NewMatchStore(path string) (*MatchStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create matches dir: %w", err)
	}
	return &MatchStore{path: path}, nil
}

func (s *MatchStore) load() ([]rating.MatchRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read matches file: %w", err)
	}
	var matches []rating.MatchRecord
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, fmt.Errorf("unmarshal matches file: %w", err)
	}
	return matches, nil
}

// Append adds a match record to the end of the history file.
func (s *MatchStore) Append(ctx context.Context, match rating.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.load()
	if err != nil {
		return err
	}
	matches = append(matches, match)

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal matches: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write matches temp file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// List returns every persisted match, oldest first.
func (s *MatchStore) List(ctx context.Context) ([]rating.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// FindByID returns a single match record, or nil if not found.
func (s *MatchStore) FindByID(ctx context.Context, matchID string) (*rating.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].MatchID == matchID {
			return &matches[i], nil
		}
	}
	return nil, nil
}
