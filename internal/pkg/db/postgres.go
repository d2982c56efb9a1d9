// Package db connects to PostgreSQL and owns the bankroll schema.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/config"
)

// ApplicationName tags server connections in pg_stat_activity.
const ApplicationName = "poker-bankroll"

// ErrSchemaMissing is reported by HealthCheck until Migrate has run.
var ErrSchemaMissing = errors.New("bankroll schema not migrated")

// Pool is the server's connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to the database described by cfg and pings it.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(max(cfg.PoolSize, 1))
	poolConfig.MinConns = max(poolConfig.MaxConns/4, 1)
	poolConfig.ConnConfig.ConnectTimeout = orDefault(cfg.ConnectTimeout, 10*time.Second)
	poolConfig.MaxConnLifetime = orDefault(cfg.MaxConnLifetime, time.Hour)
	poolConfig.MaxConnIdleTime = orDefault(cfg.MaxConnIdleTime, 30*time.Minute)
	poolConfig.HealthCheckPeriod = 30 * time.Second
	poolConfig.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	// NOW() defaults and any CURRENT_DATE use UTC.
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Str("sslmode", cfg.SSLMode).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Connecting to PostgreSQL")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Close closes the pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("PostgreSQL connection pool closed")
	}
}

// HealthCheck reports the server ready once the database answers and the
// sessions and bankrolls tables exist.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return SchemaReady(ctx, p.Pool)
}

// SchemaReady returns ErrSchemaMissing when Migrate has not been applied.
func SchemaReady(ctx context.Context, pool *pgxpool.Pool) error {
	var sessions, bankrolls bool
	err := pool.QueryRow(ctx,
		`SELECT to_regclass('public.sessions') IS NOT NULL, to_regclass('public.bankrolls') IS NOT NULL`,
	).Scan(&sessions, &bankrolls)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !sessions || !bankrolls {
		return ErrSchemaMissing
	}
	return nil
}
