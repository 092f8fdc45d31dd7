//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/KaliBomaye/stratagem/internal/testutil"
	"github.com/KaliBomaye/stratagem/pkg/rating"
)

func setup(t *testing.T) *sql.DB {
	t.Helper()
	db := testutil.SetupDB(t)
	testutil.CleanupDB(t, db)
	return db
}

func TestMatchRepoRoundTrip(t *testing.T) {
	db := setup(t)
	repo := NewMatchRepo(db)
	ctx := context.Background()

	winner := "agent-1"
	match := rating.MatchRecord{
		MatchID:    "match-1",
		Players:    []string{"agent-1", "agent-2"},
		Placements: []string{"agent-1", "agent-2"},
		Winner:     &winner,
		TurnCount:  12,
		Date:       "2026-07-31T00:00:00Z",
		ReplayFile: "replays/match-1.json",
	}

	if err := repo.Append(ctx, match); err != nil {
		t.Fatalf("append match: %v", err)
	}

	got, err := repo.FindByID(ctx, "match-1")
	if err != nil {
		t.Fatalf("find match: %v", err)
	}
	if got == nil {
		t.Fatal("expected match to be found")
	}
	if got.Winner == nil || *got.Winner != "agent-1" {
		t.Fatalf("expected winner agent-1, got %v", got.Winner)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 match, got %d", len(list))
	}
}

func TestMatchRepoFindMissing(t *testing.T) {
	db := setup(t)
	repo := NewMatchRepo(db)

	got, err := repo.FindByID(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("find missing match: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing match")
	}
}
