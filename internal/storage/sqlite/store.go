// Package sqlite provides the SQLite-backed persistent store for the
// auction: the singleton session record plus the immutable roster and
// catalog collections.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Vishal-code-E/ipl/internal/models"
)

// Store persists auction state in a local SQLite file.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS auction_state (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
	id      TEXT PRIMARY KEY,
	seq     INTEGER NOT NULL,
	payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id      TEXT PRIMARY KEY,
	seq     INTEGER NOT NULL,
	payload TEXT NOT NULL
);
`

// Open opens (creating if needed) the store at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadState returns the saved session snapshot, or (nil, nil) when none
// has been saved.
func (s *Store) LoadState(ctx context.Context) (*models.AuctionState, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM auction_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query auction state: %w", err)
	}
	var state models.AuctionState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode auction state: %w", err)
	}
	return &state, nil
}

// SaveState overwrites the singleton session record. The write is
// idempotent: saving the same snapshot twice leaves the same row.
func (s *Store) SaveState(ctx context.Context, state *models.AuctionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode auction state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO auction_state (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save auction state: %w", err)
	}
	return nil
}

// ClearState deletes the singleton session record.
func (s *Store) ClearState(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auction_state WHERE id = 1`); err != nil {
		return fmt.Errorf("clear auction state: %w", err)
	}
	return nil
}

// SaveTeams replaces the roster collection. Insertion order is kept in
// the seq column so LoadTeams returns the roster as seeded.
func (s *Store) SaveTeams(ctx context.Context, teams []models.Team) error {
	return s.replaceCollection(ctx, "teams", len(teams), func(i int) (string, any, error) {
		return teams[i].ID, teams[i], nil
	})
}

// LoadTeams returns the roster in seed order.
func (s *Store) LoadTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM teams ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		var t models.Team
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("decode team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// SavePlayers replaces the catalog collection, preserving order.
func (s *Store) SavePlayers(ctx context.Context, players []models.Player) error {
	return s.replaceCollection(ctx, "players", len(players), func(i int) (string, any, error) {
		return players[i].ID, players[i], nil
	})
}

// LoadPlayers returns the catalog in seed order.
func (s *Store) LoadPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM players ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		var p models.Player
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("decode player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) replaceCollection(ctx context.Context, table string, n int, record func(int) (string, any, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for i := 0; i < n; i++ {
		id, value, err := record(i)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s record: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (id, seq, payload) VALUES (?, ?, ?)`,
			id, i, string(payload)); err != nil {
			return fmt.Errorf("insert %s record: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
