// Package archive writes completed auction sessions to Postgres for
// long-term record keeping. Archival is strictly optional and
// best-effort: the live auction never depends on it.
package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Vishal-code-E/ipl/internal/models"
)

// Archiver persists auction results over a pgx pool.
type Archiver struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS auction_results (
	id          BIGSERIAL PRIMARY KEY,
	player_id   TEXT NOT NULL,
	player_name TEXT NOT NULL,
	team_id     TEXT NOT NULL,
	amount_lakh BIGINT NOT NULL,
	sold_at     TIMESTAMPTZ NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS auction_bids (
	id          TEXT PRIMARY KEY,
	player_id   TEXT NOT NULL,
	player_name TEXT NOT NULL,
	team_id     TEXT NOT NULL,
	team_name   TEXT NOT NULL,
	amount_lakh BIGINT NOT NULL,
	bid_at      TIMESTAMPTZ NOT NULL
);
`

// New connects to Postgres at dsn and ensures the archive schema.
func New(ctx context.Context, dsn string) (*Archiver, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect archive db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Archiver{pool: pool}, nil
}

// Close releases the pool.
func (a *Archiver) Close() {
	a.pool.Close()
}

// ArchiveSession writes every sale and the full bid ledger of the
// session. Ledger rows are keyed by bid ID, so re-archiving the same
// session is idempotent for the ledger.
func (a *Archiver) ArchiveSession(ctx context.Context, state *models.AuctionState) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sp := range state.SoldPlayers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO auction_results (player_id, player_name, team_id, amount_lakh, sold_at)
			VALUES ($1, $2, $3, $4, $5)`,
			sp.Player.ID, sp.Player.Name, sp.TeamID, sp.Amount, sp.Timestamp); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}
	for _, bid := range state.BidHistory {
		if _, err := tx.Exec(ctx, `
			INSERT INTO auction_bids (id, player_id, player_name, team_id, team_name, amount_lakh, bid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			bid.ID, bid.PlayerID, bid.PlayerName, bid.TeamID, bid.TeamName, bid.Amount, bid.Timestamp); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}

	log.Info().
		Int("sold", len(state.SoldPlayers)).
		Int("bids", len(state.BidHistory)).
		Msg("session archived")
	return nil
}
