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

// RankingsStore persists the full set of agent Elo profiles to a single
// flat JSON file (data/rankings.json by default).
type RankingsStore struct {
	mu   sync.Mutex
	path string
}

// NewRankingsStore creates a RankingsStore writing to path, creating
// its parent directory if necessary.
func NewRankingsStore(path string) (*RankingsStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create rankings dir: %w", err)
	}
	return &RankingsStore{path: path}, nil
}

// Load reads the rankings file, returning an empty map if it does not
// yet exist.
func (s *RankingsStore) Load(ctx context.Context) (map[string]*rating.AgentProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]*rating.AgentProfile), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rankings file: %w", err)
	}
	profiles := make(map[string]*rating.AgentProfile)
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("unmarshal rankings file: %w", err)
	}
	return profiles, nil
}

// Save overwrites the rankings file with the given profile set.
func (s *RankingsStore) Save(ctx context.Context, profiles map[string]*rating.AgentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rankings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write rankings temp file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
