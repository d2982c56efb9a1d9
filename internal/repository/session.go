// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"poker-bankroll/internal/model"
)

// Common errors for repository operations.
var (
	ErrSessionNotFound = errors.New("session not found")
)

const sessionColumns = `id, user_id, date, game_type, buy_in, cash_out, profit, location, notes, created_at, updated_at`

// SessionRepository handles session data persistence.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts s. The caller assigns ID, UserID and Profit.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, date, game_type, buy_in, cash_out, profit, location, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + sessionColumns

	created, err := scanSession(r.pool.QueryRow(ctx, query,
		s.ID,
		s.UserID,
		s.Date.Time(),
		string(s.GameType),
		s.BuyIn,
		nullable(s.CashOut),
		nullable(s.Profit),
		s.Location,
		s.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return created, nil
}

// GetByID retrieves a session owned by userID.
// Returns ErrSessionNotFound if no such session exists for that user.
func (r *SessionRepository) GetByID(ctx context.Context, userID, id string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND user_id = $2`

	s, err := scanSession(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// ListByUser returns the user's sessions, newest date first.
// from and to are inclusive and either may be nil.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, from, to *model.Date) ([]model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
		  AND ($2::date IS NULL OR date >= $2::date)
		  AND ($3::date IS NULL OR date <= $3::date)
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// Update writes every mutable column of s. ID and UserID select the row.
func (r *SessionRepository) Update(ctx context.Context, s *model.Session) (*model.Session, error) {
	query := `
		UPDATE sessions
		SET date = $3, game_type = $4, buy_in = $5, cash_out = $6, profit = $7,
		    location = $8, notes = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + sessionColumns

	updated, err := scanSession(r.pool.QueryRow(ctx, query,
		s.ID,
		s.UserID,
		s.Date.Time(),
		string(s.GameType),
		s.BuyIn,
		nullable(s.CashOut),
		nullable(s.Profit),
		s.Location,
		s.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return updated, nil
}

// Delete removes a session owned by userID.
func (r *SessionRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var (
		s        model.Session
		date     time.Time
		gameType string
		cashOut  decimal.NullDecimal
		profit   decimal.NullDecimal
	)

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&date,
		&gameType,
		&s.BuyIn,
		&cashOut,
		&profit,
		&s.Location,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Date = model.DateOf(date)
	s.GameType = model.GameType(gameType)
	s.CashOut = fromNullable(cashOut)
	s.Profit = fromNullable(profit)

	return &s, nil
}

func nullable(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func fromNullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

func dateArg(d *model.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time()
}
