package memory

import (
	"context"
	"testing"
)

func TestBarrierCacheOrdersLifecycle(t *testing.T) {
	c := NewBarrierCache()
	ctx := context.Background()

	c.SetOrders(ctx, "g1", 0, []byte(`{}`))
	c.SetOrders(ctx, "g1", 1, []byte(`{}`))

	orders, err := c.GetOrders(ctx, "g1")
	if err != nil {
		t.Fatalf("get orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(orders))
	}

	if err := c.ClearOrders(ctx, "g1"); err != nil {
		t.Fatalf("clear orders: %v", err)
	}
	orders, _ = c.GetOrders(ctx, "g1")
	if len(orders) != 0 {
		t.Fatalf("expected orders cleared, got %d", len(orders))
	}
}

func TestBarrierCacheDrawVotes(t *testing.T) {
	c := NewBarrierCache()
	ctx := context.Background()

	c.AddDrawVote(ctx, "g2", 0)
	c.AddDrawVote(ctx, "g2", 2)

	votes, _ := c.DrawVotes(ctx, "g2")
	if len(votes) != 2 {
		t.Fatalf("expected 2 draw votes, got %d", len(votes))
	}

	c.RemoveDrawVote(ctx, "g2", 0)
	votes, _ = c.DrawVotes(ctx, "g2")
	if len(votes) != 1 {
		t.Fatalf("expected 1 draw vote, got %d", len(votes))
	}

	c.ClearDrawVotes(ctx, "g2")
	votes, _ = c.DrawVotes(ctx, "g2")
	if len(votes) != 0 {
		t.Fatalf("expected draw votes cleared, got %d", len(votes))
	}
}

func TestBarrierCacheIsolatesGames(t *testing.T) {
	c := NewBarrierCache()
	ctx := context.Background()

	c.SetOrders(ctx, "g3", 0, []byte(`{}`))
	orders, _ := c.GetOrders(ctx, "g4")
	if len(orders) != 0 {
		t.Fatalf("expected game g4 to have no orders from g3, got %d", len(orders))
	}
}
