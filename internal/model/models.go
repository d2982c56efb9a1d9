// Package model defines the data models for the poker bankroll tracker.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidSession is wrapped by every session validation failure.
var ErrInvalidSession = errors.New("invalid session")

// Amounts are stored as NUMERIC(14, 2).
const AmountPlaces = 2

var maxAmount = decimal.New(1, 12)

// checkAmount rejects values the session columns cannot hold exactly.
func checkAmount(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSession, name)
	}
	if !d.Equal(d.Round(AmountPlaces)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidSession, name, AmountPlaces)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: %s is too large", ErrInvalidSession, name)
	}
	return nil
}

// GameType is the kind of poker played in a session.
type GameType string

// Game types a session can be recorded under.
const (
	GameTypeCash       GameType = "cash"
	GameTypeTournament GameType = "tournament"
)

// GameTypes returns every game type in display order.
func GameTypes() []GameType {
	return []GameType{GameTypeCash, GameTypeTournament}
}

// Valid reports whether g is one of the known game types.
func (g GameType) Valid() bool {
	return g == GameTypeCash || g == GameTypeTournament
}

// Session is a single recorded poker session.
// Profit is derived from BuyIn and CashOut and is nil while CashOut is unset.
type Session struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"userId,omitempty" db:"user_id"`
	Date      Date             `json:"date" db:"date"`
	GameType  GameType         `json:"gameType" db:"game_type"`
	BuyIn     decimal.Decimal  `json:"buyIn" db:"buy_in"`
	CashOut   *decimal.Decimal `json:"cashOut" db:"cash_out"`
	Profit    *decimal.Decimal `json:"profit" db:"profit"`
	Location  string           `json:"location" db:"location"`
	Notes     string           `json:"notes" db:"notes"`
	CreatedAt time.Time        `json:"createdAt,omitzero" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt,omitzero" db:"updated_at"`
}

// SessionInput names every field a caller may set on a session.
// Create and edit both take a full SessionInput; there is no partial update.
type SessionInput struct {
	Date     Date             `json:"date"`
	GameType GameType         `json:"gameType"`
	BuyIn    decimal.Decimal  `json:"buyIn"`
	CashOut  *decimal.Decimal `json:"cashOut,omitempty"`
	Location string           `json:"location"`
	Notes    string           `json:"notes"`
}

// Validate checks the input before it is written to any store.
func (in SessionInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidSession)
	}
	if !in.GameType.Valid() {
		return fmt.Errorf("%w: unknown game type %q", ErrInvalidSession, in.GameType)
	}
	if err := checkAmount("buy-in", in.BuyIn); err != nil {
		return err
	}
	if in.CashOut != nil {
		if err := checkAmount("cash-out", *in.CashOut); err != nil {
			return err
		}
	}
	return nil
}

// ComputeProfit returns cashOut - buyIn, or nil when cashOut is unset.
func ComputeProfit(buyIn decimal.Decimal, cashOut *decimal.Decimal) *decimal.Decimal {
	if cashOut == nil {
		return nil
	}
	p := cashOut.Sub(buyIn)
	return &p
}

// Apply overwrites every mutable field of s with in and recomputes Profit.
// ID, UserID and the timestamps are left untouched.
func (s *Session) Apply(in SessionInput) {
	s.Date = in.Date
	s.GameType = in.GameType
	s.BuyIn = in.BuyIn
	s.CashOut = copyAmount(in.CashOut)
	s.Location = in.Location
	s.Notes = in.Notes
	s.Profit = ComputeProfit(s.BuyIn, s.CashOut)
}

// Input returns the caller-settable fields of s.
func (s Session) Input() SessionInput {
	return SessionInput{
		Date:     s.Date,
		GameType: s.GameType,
		BuyIn:    s.BuyIn,
		CashOut:  copyAmount(s.CashOut),
		Location: s.Location,
		Notes:    s.Notes,
	}
}

// Clone returns a copy of s that shares no amount pointers with it.
func (s Session) Clone() Session {
	c := s
	c.CashOut = copyAmount(s.CashOut)
	c.Profit = copyAmount(s.Profit)
	return c
}

// ProfitOrZero returns the session profit, counting an open session as zero.
func (s Session) ProfitOrZero() decimal.Decimal {
	if s.Profit == nil {
		return decimal.Zero
	}
	return *s.Profit
}

// Bankroll is the user's starting bankroll and goal. Either may be unset.
type Bankroll struct {
	Starting *decimal.Decimal `json:"starting"`
	Goal     *decimal.Decimal `json:"goal"`
}

func copyAmount(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
