package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

// RecoveryService rehydrates in-progress games from their replay files
// on startup. A game's board state comes from its last replay snapshot;
// any orders already submitted for the turn in progress at crash time —
// and any draw votes — come from the barrier cache, if one is
// configured. Without a cache, recovery still succeeds; it just resumes
// each game at an empty barrier, equivalent to a forced-resolution
// boundary having just occurred.
type RecoveryService struct {
	replays repository.ReplayRepository
	cache   repository.BarrierCache
	games   *GameManager
}

// NewRecoveryService creates a RecoveryService. cache may be nil.
func NewRecoveryService(replays repository.ReplayRepository, cache repository.BarrierCache, games *GameManager) *RecoveryService {
	return &RecoveryService{replays: replays, cache: cache, games: games}
}

// RecoverAll reloads every game with a replay file into the live
// GameManager. Games whose last snapshot already has a winner are
// skipped — there is nothing left to resume.
func (r *RecoveryService) RecoverAll(ctx context.Context) (int, error) {
	ids, err := r.replays.ListGameIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list replay games: %w", err)
	}

	recovered := 0
	for _, id := range ids {
		if err := r.recoverOne(ctx, id); err != nil {
			return recovered, fmt.Errorf("recover game %s: %w", id, err)
		}
		recovered++
	}
	return recovered, nil
}

func (r *RecoveryService) recoverOne(ctx context.Context, gameID string) error {
	snaps, err := r.replays.LoadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return nil
	}

	last := snaps[len(snaps)-1]
	if last.State == nil {
		return nil
	}
	if last.State.Winner != nil {
		// Game already concluded; nothing to resume.
		return nil
	}

	game, err := rebuildGame(gameID, last.State)
	if err != nil {
		return err
	}

	pending := make(map[int]engine.OrderSet)
	drawVote := make(map[int]bool)
	if r.cache != nil {
		cached, err := r.cache.GetOrders(ctx, gameID)
		if err != nil {
			return fmt.Errorf("load cached orders: %w", err)
		}
		for playerID, raw := range cached {
			var orders engine.OrderSet
			if err := json.Unmarshal(raw, &orders); err != nil {
				continue
			}
			pending[playerID] = orders
		}
		votes, err := r.cache.DrawVotes(ctx, gameID)
		if err != nil {
			return fmt.Errorf("load cached draw votes: %w", err)
		}
		for _, playerID := range votes {
			drawVote[playerID] = true
		}
	}

	r.games.Register(gameID, &GameInstance{
		game:     game,
		pending:  pending,
		drawVote: drawVote,
	})
	return nil
}

// rebuildGame reconstructs a Game from a full-state snapshot: province
// ownership and buildings, every unit, every player's civ/age/resources/
// techs, and trade routes, all taken from the snapshot directly rather
// than replayed move-by-move, since the snapshot is already the
// authoritative post-resolution state for that turn. The per-turn and
// per-player diplomacy ledger (messages, proposals, treaties) is not
// part of FullStateView and so does not survive a restart — acceptable
// because diplomacy has no effect on future resolution once a proposal
// or treaty has already been applied to Players/Provinces (§4.5), only
// on what a client can read back; a recovered game simply starts a new,
// empty ledger going forward.
func rebuildGame(gameID string, snap *engine.FullStateView) (*engine.Game, error) {
	g := &engine.Game{
		ID:           gameID,
		Map:          engine.TournamentMap,
		Turn:         snap.Turn,
		Winner:       snap.Winner,
		TrustPenalty: make(map[int]int),
	}

	g.Provinces = make(map[string]*engine.Province, len(snap.Provinces))
	for id, p := range snap.Provinces {
		prov := &engine.Province{
			ID:        p.ID,
			Owner:     p.Owner,
			Buildings: make(map[engine.BuildingType]*engine.Building, len(p.Buildings)),
		}
		for _, t := range p.Buildings {
			prov.Buildings[t] = &engine.Building{Type: t, Done: true}
		}
		g.Provinces[id] = prov
	}

	g.Units = make(map[string]*engine.Unit, len(snap.Units))
	for id, u := range snap.Units {
		unit := *u
		g.Units[id] = &unit
		if prov, ok := g.Provinces[u.Province]; ok {
			prov.UnitIDs = append(prov.UnitIDs, id)
		}
	}

	g.Players = make([]*engine.Player, 0, len(snap.Players))
	for _, p := range snap.Players {
		player := *p
		player.Techs = make(map[engine.TechID]bool, len(p.Techs))
		for t, held := range p.Techs {
			player.Techs[t] = held
		}
		g.Players = append(g.Players, &player)
	}

	g.TradeRoutes = make([]*engine.TradeRoute, len(snap.TradeRoutes))
	for i, tr := range snap.TradeRoutes {
		route := *tr
		g.TradeRoutes[i] = &route
	}

	return g, nil
}
