//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/KaliBomaye/stratagem/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return &Client{rdb: testRDB}
}

func TestOrdersRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	c.SetOrders(ctx, "game-1", 0, []byte(`{"moves":[]}`))
	c.SetOrders(ctx, "game-1", 1, []byte(`{"moves":[]}`))

	got, err := c.GetOrders(ctx, "game-1")
	if err != nil {
		t.Fatalf("get orders: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 players with orders, got %d", len(got))
	}

	if err := c.ClearOrders(ctx, "game-1"); err != nil {
		t.Fatalf("clear orders: %v", err)
	}
	got, _ = c.GetOrders(ctx, "game-1")
	if len(got) != 0 {
		t.Fatal("expected orders cleared")
	}
}

func TestDrawVotes(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	c.AddDrawVote(ctx, "game-2", 0)
	c.AddDrawVote(ctx, "game-2", 1)

	votes, err := c.DrawVotes(ctx, "game-2")
	if err != nil {
		t.Fatalf("draw votes: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected 2 draw votes, got %d", len(votes))
	}

	c.RemoveDrawVote(ctx, "game-2", 0)
	votes, _ = c.DrawVotes(ctx, "game-2")
	if len(votes) != 1 {
		t.Fatalf("expected 1 draw vote after removal, got %d", len(votes))
	}

	c.ClearDrawVotes(ctx, "game-2")
	votes, _ = c.DrawVotes(ctx, "game-2")
	if len(votes) != 0 {
		t.Fatal("expected draw votes cleared")
	}
}

func TestLastActivity(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	if err := c.SetLastActivity(ctx, "game-3", time.Now()); err != nil {
		t.Fatalf("set last activity: %v", err)
	}
}
