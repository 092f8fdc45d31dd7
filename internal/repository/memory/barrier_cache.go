// Package memory provides the default in-process BarrierCache
// implementation, used whenever REDIS_URL is unset.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/KaliBomaye/stratagem/internal/repository"
)

type gameBarrierState struct {
	orders       map[int][]byte
	drawVotes    map[int]bool
	lastActivity time.Time
}

// BarrierCache is a sync.Mutex-guarded map of per-game pending order
// and draw-vote state, scoped to a single server process.
type BarrierCache struct {
	mu    sync.Mutex
	games map[string]*gameBarrierState
}

// NewBarrierCache creates an empty BarrierCache.
func NewBarrierCache() *BarrierCache {
	return &BarrierCache{games: make(map[string]*gameBarrierState)}
}

func (c *BarrierCache) stateFor(gameID string) *gameBarrierState {
	g, ok := c.games[gameID]
	if !ok {
		g = &gameBarrierState{orders: make(map[int][]byte), drawVotes: make(map[int]bool)}
		c.games[gameID] = g
	}
	return g
}

// SetOrders records a player's submitted orders for the current turn.
func (c *BarrierCache) SetOrders(ctx context.Context, gameID string, playerID int, orders []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFor(gameID).orders[playerID] = orders
	return nil
}

// GetOrders returns every order submitted so far this turn.
func (c *BarrierCache) GetOrders(ctx context.Context, gameID string) (map[int][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.stateFor(gameID).orders
	out := make(map[int][]byte, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

// ClearOrders resets the pending order map, called once a turn resolves.
func (c *BarrierCache) ClearOrders(ctx context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFor(gameID).orders = make(map[int][]byte)
	return nil
}

// AddDrawVote records a player's vote to end the game as a draw.
func (c *BarrierCache) AddDrawVote(ctx context.Context, gameID string, playerID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFor(gameID).drawVotes[playerID] = true
	return nil
}

// RemoveDrawVote retracts a player's draw vote.
func (c *BarrierCache) RemoveDrawVote(ctx context.Context, gameID string, playerID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stateFor(gameID).drawVotes, playerID)
	return nil
}

// DrawVotes returns the set of player ids currently voting for a draw.
func (c *BarrierCache) DrawVotes(ctx context.Context, gameID string) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	votes := c.stateFor(gameID).drawVotes
	out := make([]int, 0, len(votes))
	for id := range votes {
		out = append(out, id)
	}
	return out, nil
}

// ClearDrawVotes resets the draw-vote set, called when a draw vote ends
// the game.
func (c *BarrierCache) ClearDrawVotes(ctx context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFor(gameID).drawVotes = make(map[int]bool)
	return nil
}

// SetLastActivity records the time of the most recent order submission.
// Nothing in the server reads it back.
func (c *BarrierCache) SetLastActivity(ctx context.Context, gameID string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFor(gameID).lastActivity = at
	return nil
}

var _ repository.BarrierCache = (*BarrierCache)(nil)
