package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"poker-bankroll/internal/model"
)

// BankrollRepository handles per-user bankroll settings.
type BankrollRepository struct {
	pool *pgxpool.Pool
}

// NewBankrollRepository creates a new BankrollRepository instance.
func NewBankrollRepository(pool *pgxpool.Pool) *BankrollRepository {
	return &BankrollRepository{pool: pool}
}

// Get returns the user's bankroll. A user who never set one gets an empty
// Bankroll rather than an error.
func (r *BankrollRepository) Get(ctx context.Context, userID string) (model.Bankroll, error) {
	const query = `SELECT starting, goal FROM bankrolls WHERE user_id = $1`

	var starting, goal decimal.NullDecimal
	err := r.pool.QueryRow(ctx, query, userID).Scan(&starting, &goal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bankroll{}, nil
		}
		return model.Bankroll{}, fmt.Errorf("failed to get bankroll: %w", err)
	}

	return model.Bankroll{Starting: fromNullable(starting), Goal: fromNullable(goal)}, nil
}

// Upsert replaces the user's bankroll settings.
func (r *BankrollRepository) Upsert(ctx context.Context, userID string, b model.Bankroll) (model.Bankroll, error) {
	const query = `
		INSERT INTO bankrolls (user_id, starting, goal, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET starting = EXCLUDED.starting, goal = EXCLUDED.goal, updated_at = NOW()
		RETURNING starting, goal
	`

	var starting, goal decimal.NullDecimal
	err := r.pool.QueryRow(ctx, query, userID, nullable(b.Starting), nullable(b.Goal)).Scan(&starting, &goal)
	if err != nil {
		return model.Bankroll{}, fmt.Errorf("failed to upsert bankroll: %w", err)
	}

	return model.Bankroll{Starting: fromNullable(starting), Goal: fromNullable(goal)}, nil
}
