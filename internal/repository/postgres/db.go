// Package postgres provides an optional MatchRepository backed by
// PostgreSQL, used in place of internal/repository/file's flat-file
// match store when DATABASE_URL is set.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens a connection pool to the PostgreSQL database.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// Migrate creates the matches table if it does not already exist.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			match_id    TEXT PRIMARY KEY,
			players     TEXT[] NOT NULL,
			placements  TEXT[] NOT NULL,
			winner      TEXT,
			turn_count  INT NOT NULL,
			played_at   TEXT NOT NULL,
			replay_file TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate matches table: %w", err)
	}
	return nil
}
