// Package repository defines the storage interfaces the rest of the
// server depends on. ReplayRepository, RankingsRepository and
// MatchRepository have file-backed implementations under
// internal/repository/file; BarrierCache defaults to the in-process
// implementation under internal/repository/memory. MatchRepository
// (postgres, DATABASE_URL) and BarrierCache (redis, REDIS_URL) also have
// database-backed implementations selected at startup when the matching
// environment variable is set; replays and rankings do not.
package repository

import (
	"context"
	"time"

	"github.com/KaliBomaye/stratagem/pkg/engine"
	"github.com/KaliBomaye/stratagem/pkg/rating"
)

// ReplaySnapshot is one persisted turn of a game: the full state after
// resolution plus the orders that produced it, enough to replay or
// recover a game from disk.
type ReplaySnapshot struct {
	GameID string                  `json:"game_id"`
	Turn   int                     `json:"turn"`
	Orders map[int]engine.OrderSet `json:"orders"`
	Result *engine.TurnResult      `json:"result"`
	State  *engine.FullStateView   `json:"state"`
}

// ReplayRepository persists per-turn snapshots for one game, keyed by
// game id, so a restarted server can recover in-progress games and
// clients can fetch a game's full history.
type ReplayRepository interface {
	AppendTurn(ctx context.Context, snap ReplaySnapshot) error
	LoadGame(ctx context.Context, gameID string) ([]ReplaySnapshot, error)
	ListGameIDs(ctx context.Context) ([]string, error)
	DeleteGame(ctx context.Context, gameID string) error
}

// RankingsRepository persists agent Elo profiles.
type RankingsRepository interface {
	Load(ctx context.Context) (map[string]*rating.AgentProfile, error)
	Save(ctx context.Context, profiles map[string]*rating.AgentProfile) error
}

// MatchRepository persists finished-match history records.
type MatchRepository interface {
	Append(ctx context.Context, match rating.MatchRecord) error
	List(ctx context.Context) ([]rating.MatchRecord, error)
	FindByID(ctx context.Context, matchID string) (*rating.MatchRecord, error)
}

// BarrierCache backs the per-game pending-orders map and ready set for
// the order-submission barrier. The in-memory implementation is the
// default; a Redis-backed implementation lets multiple server
// instances share barrier state.
type BarrierCache interface {
	SetOrders(ctx context.Context, gameID string, playerID int, orders []byte) error
	GetOrders(ctx context.Context, gameID string) (map[int][]byte, error)
	ClearOrders(ctx context.Context, gameID string) error
	AddDrawVote(ctx context.Context, gameID string, playerID int) error
	RemoveDrawVote(ctx context.Context, gameID string, playerID int) error
	DrawVotes(ctx context.Context, gameID string) ([]int, error)
	ClearDrawVotes(ctx context.Context, gameID string) error
	SetLastActivity(ctx context.Context, gameID string, at time.Time) error
}
