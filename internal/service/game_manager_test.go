package service

import (
	"context"
	"testing"

	"github.com/KaliBomaye/stratagem/internal/repository/file"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

func newTestManager(t *testing.T) *GameManager {
	t.Helper()
	replays, err := file.NewReplayStore(t.TempDir())
	if err != nil {
		t.Fatalf("new replay store: %v", err)
	}
	return NewGameManager(replays, nil, nil, nil)
}

func TestSubmitOrdersWaitsForAllLivingPlayers(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	result, err := m.SubmitOrders(ctx, "g1", 0, engine.OrderSet{})
	if err != nil {
		t.Fatalf("submit orders: %v", err)
	}
	waiting, ok := result.(WaitingStatus)
	if !ok {
		t.Fatalf("expected WaitingStatus, got %T", result)
	}
	if len(waiting.Need) != 1 || waiting.Need[0] != 1 {
		t.Fatalf("expected need=[1], got %v", waiting.Need)
	}
	if len(waiting.Submitted) != 1 || waiting.Submitted[0] != 0 {
		t.Fatalf("expected submitted=[0], got %v", waiting.Submitted)
	}

	result, err = m.SubmitOrders(ctx, "g1", 1, engine.OrderSet{})
	if err != nil {
		t.Fatalf("submit second player orders: %v", err)
	}
	processed, ok := result.(TurnProcessed)
	if !ok {
		t.Fatalf("expected TurnProcessed once the barrier closes, got %T", result)
	}
	if processed.Turn.Turn != 1 {
		t.Fatalf("expected turn 1 resolved, got %d", processed.Turn.Turn)
	}
}

func TestSubmitOrdersReplacesPriorSubmission(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	if _, err := m.SubmitOrders(ctx, "g1", 0, engine.OrderSet{Research: &engine.ResearchOrder{Tech: "tac"}}); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if _, err := m.SubmitOrders(ctx, "g1", 0, engine.OrderSet{}); err != nil {
		t.Fatalf("replacement submission: %v", err)
	}

	inst := m.Get("g1")
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if orders, ok := inst.pending[0]; !ok || orders.Research != nil {
		t.Fatalf("expected replaced submission to have no research order, got %+v", orders)
	}
}

func TestSubmitOrdersRejectsGameOver(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	inst := m.Get("g1")
	inst.mu.Lock()
	winner := 0
	inst.game.Winner = &winner
	inst.mu.Unlock()

	if _, err := m.SubmitOrders(ctx, "g1", 1, engine.OrderSet{}); err != ErrGameOver {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestSubmitOrdersRejectsEliminatedPlayer(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	inst := m.Get("g1")
	inst.mu.Lock()
	inst.game.Player(1).Alive = false
	inst.mu.Unlock()

	if _, err := m.SubmitOrders(ctx, "g1", 1, engine.OrderSet{}); err != ErrPlayerEliminated {
		t.Fatalf("expected ErrPlayerEliminated, got %v", err)
	}
}

func TestForceResolveSubstitutesEmptyOrdersForMissingPlayers(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 3}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	if _, err := m.SubmitOrders(ctx, "g1", 0, engine.OrderSet{}); err != nil {
		t.Fatalf("submit orders: %v", err)
	}

	result, err := m.ForceResolve(ctx, "g1")
	if err != nil {
		t.Fatalf("force resolve: %v", err)
	}
	processed, ok := result.(TurnProcessed)
	if !ok {
		t.Fatalf("expected TurnProcessed, got %T", result)
	}
	if processed.Turn.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", processed.Turn.Turn)
	}
}

func TestVoteDrawEndsGameOnceEveryLivingPlayerAgrees(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	drawn, err := m.VoteDraw(ctx, "g1", 0, true)
	if err != nil {
		t.Fatalf("vote draw: %v", err)
	}
	if drawn {
		t.Fatalf("expected game not yet drawn with one of two votes in")
	}

	drawn, err = m.VoteDraw(ctx, "g1", 1, true)
	if err != nil {
		t.Fatalf("vote draw: %v", err)
	}
	if !drawn {
		t.Fatalf("expected game drawn once both living players vote")
	}

	inst := m.Get("g1")
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.game.Winner == nil || *inst.game.Winner != -1 {
		t.Fatalf("expected winner sentinel -1 for a draw, got %v", inst.game.Winner)
	}
}

func TestVoteDrawWithdrawal(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	if _, err := m.VoteDraw(ctx, "g1", 0, true); err != nil {
		t.Fatalf("vote draw: %v", err)
	}
	if _, err := m.VoteDraw(ctx, "g1", 0, false); err != nil {
		t.Fatalf("withdraw vote: %v", err)
	}
	drawn, err := m.VoteDraw(ctx, "g1", 1, true)
	if err != nil {
		t.Fatalf("vote draw: %v", err)
	}
	if drawn {
		t.Fatalf("expected game not drawn: player 0 withdrew their vote")
	}
}

func TestListGames(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.CreateGame("g1", engine.NewGameOptions{NumPlayers: 2}); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := m.CreateGame("g2", engine.NewGameOptions{NumPlayers: 4}); err != nil {
		t.Fatalf("create game: %v", err)
	}

	summaries := m.ListGames()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 games, got %d", len(summaries))
	}
	if summaries[0].ID != "g1" || summaries[1].ID != "g2" {
		t.Fatalf("expected games sorted by id, got %+v", summaries)
	}
	if summaries[1].Players != 4 {
		t.Fatalf("expected g2 to have 4 players, got %d", summaries[1].Players)
	}
}
