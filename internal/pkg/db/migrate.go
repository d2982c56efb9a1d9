package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations are applied in order; each statement is idempotent.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "sessions table",
		sql: `
			CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				date DATE NOT NULL,
				game_type VARCHAR(20) NOT NULL CHECK (game_type IN ('cash', 'tournament')),
				buy_in NUMERIC(14, 2) NOT NULL CHECK (buy_in >= 0),
				cash_out NUMERIC(14, 2),
				profit NUMERIC(14, 2),
				location TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON sessions(user_id, date DESC, created_at DESC);
		`,
	},
	{
		name: "bankrolls table",
		sql: `
			CREATE TABLE IF NOT EXISTS bankrolls (
				user_id TEXT PRIMARY KEY,
				starting NUMERIC(14, 2),
				goal NUMERIC(14, 2),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
}

// Migrate applies the database schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Info().Int("migration", i+1).Str("name", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
