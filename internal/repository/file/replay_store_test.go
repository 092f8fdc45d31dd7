package file

import (
	"context"
	"testing"

	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

func TestReplayStoreAppendAndLoad(t *testing.T) {
	store, err := NewReplayStore(t.TempDir())
	if err != nil {
		t.Fatalf("new replay store: %v", err)
	}
	ctx := context.Background()

	snap1 := repository.ReplaySnapshot{GameID: "g1", Turn: 1, Result: &engine.TurnResult{Turn: 1}}
	snap2 := repository.ReplaySnapshot{GameID: "g1", Turn: 2, Result: &engine.TurnResult{Turn: 2}}

	if err := store.AppendTurn(ctx, snap1); err != nil {
		t.Fatalf("append turn 1: %v", err)
	}
	if err := store.AppendTurn(ctx, snap2); err != nil {
		t.Fatalf("append turn 2: %v", err)
	}

	snaps, err := store.LoadGame(ctx, "g1")
	if err != nil {
		t.Fatalf("load game: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Turn != 1 || snaps[1].Turn != 2 {
		t.Fatalf("snapshots out of order: %+v", snaps)
	}
}

func TestReplayStoreLoadUnknownGame(t *testing.T) {
	store, _ := NewReplayStore(t.TempDir())
	snaps, err := store.LoadGame(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("load unknown game: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("expected no snapshots, got %d", len(snaps))
	}
}

func TestReplayStoreListGameIDs(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewReplayStore(dir)
	ctx := context.Background()

	store.AppendTurn(ctx, repository.ReplaySnapshot{GameID: "alpha", Turn: 1})
	store.AppendTurn(ctx, repository.ReplaySnapshot{GameID: "beta", Turn: 1})

	ids, err := store.ListGameIDs(ctx)
	if err != nil {
		t.Fatalf("list game ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Fatalf("expected [alpha beta], got %v", ids)
	}
}

func TestReplayStoreDeleteGame(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewReplayStore(dir)
	ctx := context.Background()

	store.AppendTurn(ctx, repository.ReplaySnapshot{GameID: "g2", Turn: 1})
	if err := store.DeleteGame(ctx, "g2"); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	if _, err := store.LoadGame(ctx, "g2"); err != nil {
		t.Fatalf("load after delete: %v", err)
	}

	// Deleting an already-missing game is not an error.
	if err := store.DeleteGame(ctx, "g2"); err != nil {
		t.Fatalf("delete missing game: %v", err)
	}
}
