package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/KaliBomaye/stratagem/pkg/rating"
)

// MatchRepo persists finished-match history in the matches table.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Append inserts a new match record.
func (r *MatchRepo) Append(ctx context.Context, match rating.MatchRecord) error {
	var winner sql.NullString
	if match.Winner != nil {
		winner = sql.NullString{String: *match.Winner, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (match_id, players, placements, winner, turn_count, played_at, replay_file)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (match_id) DO NOTHING`,
		match.MatchID, pq.Array(match.Players), pq.Array(match.Placements), winner,
		match.TurnCount, match.Date, match.ReplayFile,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// List returns every persisted match, most recently played first.
func (r *MatchRepo) List(ctx context.Context) ([]rating.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, players, placements, winner, turn_count, played_at, replay_file
		 FROM matches ORDER BY played_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []rating.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// FindByID returns a single match record, or nil if not found.
func (r *MatchRepo) FindByID(ctx context.Context, matchID string) (*rating.MatchRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT match_id, players, placements, winner, turn_count, played_at, replay_file
		 FROM matches WHERE match_id = $1`, matchID)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return &m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (rating.MatchRecord, error) {
	var m rating.MatchRecord
	var winner sql.NullString
	err := row.Scan(&m.MatchID, pq.Array(&m.Players), pq.Array(&m.Placements), &winner, &m.TurnCount, &m.Date, &m.ReplayFile)
	if err != nil {
		return m, err
	}
	if winner.Valid {
		m.Winner = &winner.String
	}
	return m, nil
}
