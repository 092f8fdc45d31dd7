package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/KaliBomaye/stratagem/internal/repository"
)

func ordersKey(gameID string) string    { return "stratagem:game:" + gameID + ":orders" }
func drawVotesKey(gameID string) string { return "stratagem:game:" + gameID + ":draw_votes" }
func activityKey(gameID string) string  { return "stratagem:game:" + gameID + ":last_activity" }

// SetOrders stores one player's submitted orders in the game's orders
// hash, keyed by player id.
func (c *Client) SetOrders(ctx context.Context, gameID string, playerID int, orders []byte) error {
	return c.rdb.HSet(ctx, ordersKey(gameID), strconv.Itoa(playerID), orders).Err()
}

// GetOrders returns every order submitted so far this turn.
func (c *Client) GetOrders(ctx context.Context, gameID string) (map[int][]byte, error) {
	raw, err := c.rdb.HGetAll(ctx, ordersKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	out := make(map[int][]byte, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = []byte(v)
	}
	return out, nil
}

// ClearOrders removes the game's orders hash, called once a turn resolves.
func (c *Client) ClearOrders(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, ordersKey(gameID)).Err()
}

// AddDrawVote adds a player to the game's draw-vote set.
func (c *Client) AddDrawVote(ctx context.Context, gameID string, playerID int) error {
	return c.rdb.SAdd(ctx, drawVotesKey(gameID), playerID).Err()
}

// RemoveDrawVote removes a player from the game's draw-vote set.
func (c *Client) RemoveDrawVote(ctx context.Context, gameID string, playerID int) error {
	return c.rdb.SRem(ctx, drawVotesKey(gameID), playerID).Err()
}

// DrawVotes returns the player ids currently voting for a draw.
func (c *Client) DrawVotes(ctx context.Context, gameID string) ([]int, error) {
	members, err := c.rdb.SMembers(ctx, drawVotesKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("draw votes: %w", err)
	}
	out := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// ClearDrawVotes removes the game's draw-vote set, called when a draw
// vote ends the game.
func (c *Client) ClearDrawVotes(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, drawVotesKey(gameID)).Err()
}

// SetLastActivity records the time of the most recent order submission.
func (c *Client) SetLastActivity(ctx context.Context, gameID string, at time.Time) error {
	return c.rdb.Set(ctx, activityKey(gameID), at.Unix(), 0).Err()
}

var _ repository.BarrierCache = (*Client)(nil)
