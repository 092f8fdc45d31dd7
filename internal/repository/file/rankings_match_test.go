package file

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/KaliBomaye/stratagem/pkg/rating"
)

func TestRankingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.json")
	store, err := NewRankingsStore(path)
	if err != nil {
		t.Fatalf("new rankings store: %v", err)
	}
	ctx := context.Background()

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty rankings: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(empty))
	}

	profiles := map[string]*rating.AgentProfile{
		"agent-1": rating.NewAgentProfile("agent-1"),
	}
	profiles["agent-1"].Wins = 3

	if err := store.Save(ctx, profiles); err != nil {
		t.Fatalf("save rankings: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load rankings: %v", err)
	}
	if loaded["agent-1"].Wins != 3 {
		t.Fatalf("expected 3 wins, got %d", loaded["agent-1"].Wins)
	}
}

func TestMatchStoreAppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.json")
	store, err := NewMatchStore(path)
	if err != nil {
		t.Fatalf("new match store: %v", err)
	}
	ctx := context.Background()

	winner := "agent-2"
	m := rating.MatchRecord{MatchID: "m1", Players: []string{"agent-1", "agent-2"}, Winner: &winner, TurnCount: 20}

	if err := store.Append(ctx, m); err != nil {
		t.Fatalf("append match: %v", err)
	}

	got, err := store.FindByID(ctx, "m1")
	if err != nil {
		t.Fatalf("find match: %v", err)
	}
	if got == nil || got.TurnCount != 20 {
		t.Fatalf("expected match m1 with 20 turns, got %+v", got)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 match, got %d", len(list))
	}

	missing, err := store.FindByID(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("find missing match: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing match")
	}
}
