// Package service wires the engine to the rest of the server: the
// per-game submission barrier, rating updates on game completion, and
// recovery of in-progress games after a restart.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

var (
	// ErrGameNotFound is returned for an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameOver is returned when submitting orders to a game that
	// already has a winner.
	ErrGameOver = errors.New("game already has a winner")
	// ErrPlayerEliminated is returned when an eliminated player submits orders.
	ErrPlayerEliminated = errors.New("player has been eliminated")
)

// GameInstance is one running game: the engine state, the set of
// orders submitted for the current turn, and the per-turn log. All of
// it is mutated only while holding mu, so the instance is externally
// serial even though the HTTP transport is concurrent — the barrier
// invariant (§4.6) depends on this.
type GameInstance struct {
	mu       sync.Mutex
	game     *engine.Game
	pending  map[int]engine.OrderSet
	turnLog  []TurnLogEntry
	drawVote map[int]bool
}

// ViewFor returns the fog-of-war projection for a player, or nil if the
// player id does not belong to this game.
func (inst *GameInstance) ViewFor(playerID int) *engine.PlayerView {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.game.Player(playerID) == nil {
		return nil
	}
	return inst.game.ViewFor(playerID)
}

// FullState returns the unrestricted spectator/replay projection.
func (inst *GameInstance) FullState() *engine.FullStateView {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.game.FullState()
}

// Diplomacy returns the game's full message ledger, optionally filtered
// to public messages only (§6: live spectating hides private messages,
// replay mode shows everything).
func (inst *GameInstance) Diplomacy(publicOnly bool) []*engine.DiplomacyMessage {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !publicOnly {
		out := make([]*engine.DiplomacyMessage, len(inst.game.Messages))
		copy(out, inst.game.Messages)
		return out
	}
	var out []*engine.DiplomacyMessage
	for _, m := range inst.game.Messages {
		if m.IsPublic {
			out = append(out, m)
		}
	}
	return out
}

// Treaties returns every treaty ever created in this game, active or broken.
func (inst *GameInstance) Treaties() []*engine.Treaty {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	out := make([]*engine.Treaty, len(inst.game.Treaties))
	copy(out, inst.game.Treaties)
	return out
}

// DiplomacyLedger returns the complete message and treaty history, the
// shape GetReplay needs (§4.7: a replay is self-contained).
func (inst *GameInstance) DiplomacyLedger() ([]*engine.DiplomacyMessage, []*engine.Treaty) {
	return inst.Diplomacy(false), inst.Treaties()
}

// TurnLogEntry is one resolved turn's full record, matching the replay
// document's per-turn shape (§4.7).
type TurnLogEntry struct {
	Turn         int                      `json:"turn"`
	Events       []string                 `json:"events"`
	Combats      []*engine.CombatResult   `json:"combats"`
	Income       map[int]engine.Resources `json:"income"`
	Eliminations []int                    `json:"eliminations"`
	Winner       *int                     `json:"winner"`
	State        *engine.FullStateView    `json:"state"`
}

// WaitingStatus is the response shape for an order submission that has
// not yet closed the barrier.
type WaitingStatus struct {
	Status    string `json:"status"`
	Submitted []int  `json:"submitted"`
	Need      []int  `json:"need"`
}

// TurnProcessed is the response shape once the barrier closes and the
// turn resolves.
type TurnProcessed struct {
	Status string       `json:"status"`
	Turn   TurnLogEntry `json:"turn"`
}

// GameManager owns every live GameInstance in this process plus the
// repositories and rating service that persist their side effects.
type GameManager struct {
	mu        sync.RWMutex
	instances map[string]*GameInstance

	replays   repository.ReplayRepository
	cache     repository.BarrierCache
	ratings   *RatingService
	broadcast Broadcaster
}

// NewGameManager creates a GameManager. cache may be nil, in which case
// in-flight submissions live only in process memory — fine for a single
// server instance, since replay snapshots already cover crash recovery
// between turns; cache additionally survives a crash mid-turn (after some
// but not all living players have submitted).
func NewGameManager(replays repository.ReplayRepository, cache repository.BarrierCache, ratings *RatingService, broadcast Broadcaster) *GameManager {
	if broadcast == nil {
		broadcast = NoopBroadcaster{}
	}
	return &GameManager{
		instances: make(map[string]*GameInstance),
		replays:   replays,
		cache:     cache,
		ratings:   ratings,
		broadcast: broadcast,
	}
}

// CreateGame initializes a new engine.Game, registers it as a live
// instance, and returns it.
func (m *GameManager) CreateGame(id string, opts engine.NewGameOptions) (*engine.Game, error) {
	g, err := engine.NewGame(id, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[id] = &GameInstance{
		game:     g,
		pending:  make(map[int]engine.OrderSet),
		drawVote: make(map[int]bool),
	}
	return g, nil
}

// Get returns the live instance for a game id, or nil if unknown.
func (m *GameManager) Get(gameID string) *GameInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[gameID]
}

// ListGames returns every live game's summary row for GET /games.
func (m *GameManager) ListGames() []GameSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]GameSummary, 0, len(ids))
	for _, id := range ids {
		inst := m.instances[id]
		inst.mu.Lock()
		summaries = append(summaries, GameSummary{
			ID:      id,
			Turn:    inst.game.Turn,
			Winner:  inst.game.Winner,
			Players: len(inst.game.Players),
		})
		inst.mu.Unlock()
	}
	return summaries
}

// GameSummary is one row of GET /games.
type GameSummary struct {
	ID      string `json:"id"`
	Turn    int    `json:"turn"`
	Winner  *int   `json:"winner"`
	Players int    `json:"players"`
}

// Register adds a recovered GameInstance (built from a replay file) to
// the live set, used by the recovery service on startup.
func (m *GameManager) Register(gameID string, inst *GameInstance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[gameID] = inst
}

// SubmitOrders implements the submission protocol of §4.6: reject a
// dead game or an eliminated submitter, store the order set (replacing
// any prior submission this turn — the barrier-race rule), and close
// the barrier once every living player has submitted.
func (m *GameManager) SubmitOrders(ctx context.Context, gameID string, playerID int, orders engine.OrderSet) (any, error) {
	inst := m.Get(gameID)
	if inst == nil {
		return nil, ErrGameNotFound
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.game.Winner != nil {
		return nil, ErrGameOver
	}
	player := inst.game.Player(playerID)
	if player == nil || !player.Alive {
		return nil, ErrPlayerEliminated
	}

	inst.pending[playerID] = orders

	if m.cache != nil {
		if raw, err := json.Marshal(orders); err == nil {
			if err := m.cache.SetOrders(ctx, gameID, playerID, raw); err != nil {
				return nil, fmt.Errorf("cache pending orders: %w", err)
			}
		}
		if err := m.cache.SetLastActivity(ctx, gameID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("cache last activity: %w", err)
		}
	}

	return m.maybeResolveLocked(ctx, inst)
}

// ForceResolve substitutes empty orders for any missing living player
// and resolves the turn immediately, regardless of barrier state.
func (m *GameManager) ForceResolve(ctx context.Context, gameID string) (any, error) {
	inst := m.Get(gameID)
	if inst == nil {
		return nil, ErrGameNotFound
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.game.Winner != nil {
		return nil, ErrGameOver
	}
	for _, p := range inst.game.Players {
		if p.Alive {
			if _, ok := inst.pending[p.ID]; !ok {
				inst.pending[p.ID] = engine.OrderSet{}
			}
		}
	}
	return m.resolveLocked(ctx, inst)
}

// maybeResolveLocked checks whether the barrier has closed (every
// living player has a pending order set) and resolves if so, otherwise
// returns the waiting status. Caller must hold inst.mu.
func (m *GameManager) maybeResolveLocked(ctx context.Context, inst *GameInstance) (any, error) {
	var need []int
	var submitted []int
	for _, p := range inst.game.Players {
		if !p.Alive {
			continue
		}
		if _, ok := inst.pending[p.ID]; ok {
			submitted = append(submitted, p.ID)
		} else {
			need = append(need, p.ID)
		}
	}
	sort.Ints(submitted)
	sort.Ints(need)

	if len(need) > 0 {
		return WaitingStatus{Status: "waiting", Submitted: submitted, Need: need}, nil
	}
	return m.resolveLocked(ctx, inst)
}

// resolveLocked runs the turn resolver, clears pending orders, appends
// the turn log, persists the replay, and triggers rating updates on a
// game-ending turn. Caller must hold inst.mu.
func (m *GameManager) resolveLocked(ctx context.Context, inst *GameInstance) (any, error) {
	orders := inst.pending
	inst.pending = make(map[int]engine.OrderSet)

	if m.cache != nil {
		if err := m.cache.ClearOrders(ctx, inst.game.ID); err != nil {
			return nil, fmt.Errorf("clear cached orders: %w", err)
		}
	}

	result := engine.Resolve(inst.game, orders)

	entry := TurnLogEntry{
		Turn:         result.Turn,
		Events:       result.Events,
		Combats:      result.Combats,
		Income:       result.Income,
		Eliminations: result.Eliminations,
		Winner:       result.Winner,
		State:        inst.game.FullState(),
	}
	inst.turnLog = append(inst.turnLog, entry)

	if m.replays != nil {
		snap := repository.ReplaySnapshot{
			GameID: inst.game.ID,
			Turn:   entry.Turn,
			Orders: orders,
			Result: result,
			State:  entry.State,
		}
		if err := m.replays.AppendTurn(ctx, snap); err != nil {
			return nil, fmt.Errorf("persist replay: %w", err)
		}
	}

	m.broadcast.BroadcastGameEvent(inst.game.ID, "turn_processed", map[string]any{"turn": entry.Turn})

	if result.Winner != nil && m.ratings != nil {
		placements := placementOrder(inst.game, *result.Winner)
		if err := m.ratings.RecordMatch(ctx, inst.game.ID, placements, result.Winner, entry.Turn); err != nil {
			return nil, fmt.Errorf("record match: %w", err)
		}
		m.broadcast.BroadcastGameEvent(inst.game.ID, "game_ended", map[string]any{"winner": *result.Winner})
	}

	return TurnProcessed{Status: "turn_processed", Turn: entry}, nil
}

// placementOrder builds the §4.8 ordered placement list: winner first,
// other alive players next (order among them is unspecified), then
// eliminated players in elimination order (tracked implicitly by the
// order their Alive flag flipped — approximated here by ascending id
// among the eliminated, since the engine does not currently timestamp
// eliminations beyond the turn they occurred in).
func placementOrder(g *engine.Game, winner int) []string {
	var others, eliminated []int
	for _, p := range g.Players {
		if p.ID == winner {
			continue
		}
		if p.Alive {
			others = append(others, p.ID)
		} else {
			eliminated = append(eliminated, p.ID)
		}
	}
	sort.Ints(others)
	sort.Ints(eliminated)

	placements := make([]string, 0, len(g.Players))
	placements = append(placements, playerKey(winner))
	for _, id := range others {
		placements = append(placements, playerKey(id))
	}
	for _, id := range eliminated {
		placements = append(placements, playerKey(id))
	}
	return placements
}

func playerKey(id int) string {
	return fmt.Sprintf("p%d", id)
}

// VoteDraw records a living player's vote to end the game without a
// winner. Once every living player has voted, the game ends as a draw
// (supplemental behavior, not present in the distilled spec — see
// DESIGN.md).
func (m *GameManager) VoteDraw(ctx context.Context, gameID string, playerID int, vote bool) (bool, error) {
	inst := m.Get(gameID)
	if inst == nil {
		return false, ErrGameNotFound
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.game.Winner != nil {
		return false, ErrGameOver
	}
	if player := inst.game.Player(playerID); player == nil || !player.Alive {
		return false, ErrPlayerEliminated
	}
	if vote {
		inst.drawVote[playerID] = true
		if m.cache != nil {
			if err := m.cache.AddDrawVote(ctx, gameID, playerID); err != nil {
				return false, fmt.Errorf("cache draw vote: %w", err)
			}
		}
	} else {
		delete(inst.drawVote, playerID)
		if m.cache != nil {
			if err := m.cache.RemoveDrawVote(ctx, gameID, playerID); err != nil {
				return false, fmt.Errorf("uncache draw vote: %w", err)
			}
		}
	}

	aliveCount := 0
	for _, p := range inst.game.Players {
		if p.Alive {
			aliveCount++
		}
	}
	if len(inst.drawVote) >= aliveCount && aliveCount > 0 {
		drawn := -1 // -1 denotes a no-winner draw, never a valid player id
		inst.game.Winner = &drawn
		if m.cache != nil {
			if err := m.cache.ClearDrawVotes(ctx, gameID); err != nil {
				return false, fmt.Errorf("clear cached draw votes: %w", err)
			}
		}
		m.broadcast.BroadcastGameEvent(gameID, "game_ended", map[string]any{"winner": "draw"})
		return true, nil
	}
	return false, nil
}
