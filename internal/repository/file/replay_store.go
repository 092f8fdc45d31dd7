// Package file implements the repository interfaces against the local
// filesystem: one JSON file per game under a replays directory, and
// flat JSON files for rankings and match history. This is the default
// storage backend; it requires no external service. Replays and rankings
// always use it, and match history falls back to it when DATABASE_URL is
// unset (the barrier cache falls back to internal/repository/memory when
// REDIS_URL is unset).
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/KaliBomaye/stratagem/internal/repository"
)

// ReplayStore persists one append-only JSON array of turn snapshots per
// game under <dir>/<game_id>.json.
type ReplayStore struct {
	mu  sync.Mutex
	dir string
}

// NewReplayStore creates a ReplayStore rooted at dir, creating it if
// it does not already exist.
func NewReplayStore(dir string) (*ReplayStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &ReplayStore{dir: dir}, nil
}

func (s *ReplayStore) pathFor(gameID string) string {
	return filepath.Join(s.dir, gameID+".json")
}

// AppendTurn loads the game's existing snapshots, appends snap, and
// rewrites the file atomically (write to a temp file, then rename).
func (s *ReplayStore) AppendTurn(ctx context.Context, snap repository.ReplaySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps, err := s.load(snap.GameID)
	if err != nil {
		return err
	}
	snaps = append(snaps, snap)

	data, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal replay: %w", err)
	}

	path := s.pathFor(snap.GameID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write replay temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename replay file: %w", err)
	}
	return nil
}

func (s *ReplayStore) load(gameID string) ([]repository.ReplaySnapshot, error) {
	data, err := os.ReadFile(s.pathFor(gameID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	var snaps []repository.ReplaySnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("unmarshal replay file: %w", err)
	}
	return snaps, nil
}

// LoadGame returns every persisted turn snapshot for a game, oldest
// first. Returns an empty slice, not an error, for an unknown game.
func (s *ReplayStore) LoadGame(ctx context.Context, gameID string) ([]repository.ReplaySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(gameID)
}

// ListGameIDs returns every game id that has a replay file on disk,
// used at startup to recover in-progress games.
func (s *ReplayStore) ListGameIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read replay dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteGame removes a game's replay file.
func (s *ReplayStore) DeleteGame(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.pathFor(gameID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
