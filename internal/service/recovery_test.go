package service

import (
	"context"
	"testing"

	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/internal/repository/file"
	"github.com/KaliBomaye/stratagem/internal/repository/memory"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

func TestRecoverAllSkipsGamesWithNoReplay(t *testing.T) {
	replays, err := file.NewReplayStore(t.TempDir())
	if err != nil {
		t.Fatalf("new replay store: %v", err)
	}
	games := NewGameManager(replays, nil, nil, nil)
	rec := NewRecoveryService(replays, nil, games)

	n, err := rec.RecoverAll(context.Background())
	if err != nil {
		t.Fatalf("recover all: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing to recover, got %d", n)
	}
}

func TestRecoverAllRebuildsInProgressGameFromReplay(t *testing.T) {
	ctx := context.Background()
	replays, err := file.NewReplayStore(t.TempDir())
	if err != nil {
		t.Fatalf("new replay store: %v", err)
	}
	cache := memory.NewBarrierCache()

	source := NewGameManager(replays, cache, nil, nil)
	if _, err := source.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := source.SubmitOrders(ctx, "g1", 0, engine.OrderSet{}); err != nil {
		t.Fatalf("submit p0: %v", err)
	}
	if _, err := source.SubmitOrders(ctx, "g1", 1, engine.OrderSet{}); err != nil {
		t.Fatalf("submit p1: %v", err)
	}

	// Mid-turn: only one of two living players has submitted. This is
	// exactly the state a crash-and-restart needs to recover.
	if _, err := source.SubmitOrders(ctx, "g1", 0, engine.OrderSet{Research: &engine.ResearchOrder{Tech: "tac"}}); err != nil {
		t.Fatalf("submit turn 2 p0: %v", err)
	}

	recovered := NewGameManager(replays, cache, nil, nil)
	rec := NewRecoveryService(replays, cache, recovered)
	n, err := rec.RecoverAll(ctx)
	if err != nil {
		t.Fatalf("recover all: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected to recover 1 game, got %d", n)
	}

	inst := recovered.Get("g1")
	if inst == nil {
		t.Fatal("expected recovered game to be registered")
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.game.Turn != 1 {
		t.Fatalf("expected recovered game to sit at turn 1 (last resolved), got %d", inst.game.Turn)
	}
	if len(inst.game.Players) != 2 {
		t.Fatalf("expected 2 players to survive reconstruction, got %d", len(inst.game.Players))
	}
	if len(inst.game.Provinces) == 0 {
		t.Fatal("expected provinces to survive reconstruction")
	}
	orders, ok := inst.pending[0]
	if !ok {
		t.Fatal("expected player 0's mid-turn submission to survive via the barrier cache")
	}
	if orders.Research == nil || orders.Research.Tech != "tac" {
		t.Fatalf("expected recovered pending orders to match what was cached, got %+v", orders)
	}
	if _, ok := inst.pending[1]; ok {
		t.Fatal("player 1 had not submitted for the in-progress turn and should not appear in pending")
	}
}

func TestRecoverAllSkipsConcludedGames(t *testing.T) {
	ctx := context.Background()
	replays, err := file.NewReplayStore(t.TempDir())
	if err != nil {
		t.Fatalf("new replay store: %v", err)
	}

	source := NewGameManager(replays, nil, nil, nil)
	if _, err := source.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	inst := source.Get("g1")
	inst.mu.Lock()
	winner := 0
	inst.game.Winner = &winner
	snap := inst.game.FullState()
	inst.mu.Unlock()

	// Persist a concluded snapshot directly: the game above already has
	// a winner, so going through SubmitOrders/ForceResolve would just
	// report ErrGameOver rather than writing a replay turn.
	if err := replays.AppendTurn(ctx, repository.ReplaySnapshot{
		GameID: "g1",
		Turn:   snap.Turn,
		State:  snap,
	}); err != nil {
		t.Fatalf("append turn: %v", err)
	}

	recovered := NewGameManager(replays, nil, nil, nil)
	rec := NewRecoveryService(replays, nil, recovered)
	n, err := rec.RecoverAll(ctx)
	if err != nil {
		t.Fatalf("recover all: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected RecoverAll to visit the one replay file, got %d", n)
	}
	if recovered.Get("g1") != nil {
		t.Fatal("expected a concluded game not to be re-registered as live")
	}
}
