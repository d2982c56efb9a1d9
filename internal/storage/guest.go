package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/localstore"
	"poker-bankroll/internal/model"
)

// KV is the slice of the local store the guest adapter uses.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Guest stores sessions and the bankroll in the local store. Every operation
// reads and rewrites the whole session list.
type Guest struct {
	kv  KV
	now func() time.Time
}

// NewGuest creates a Guest over kv.
func NewGuest(kv KV) *Guest {
	return &Guest{kv: kv, now: time.Now}
}

// Sessions returns the stored sessions in the order they were recorded.
// Malformed data reads as an empty list.
func (g *Guest) Sessions(ctx context.Context) ([]model.Session, error) {
	raw, ok, err := g.kv.Get(ctx, localstore.KeyGuestSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to read guest sessions: %w", err)
	}
	if !ok || raw == "" {
		return []model.Session{}, nil
	}

	var sessions []model.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed guest sessions")
		return []model.Session{}, nil
	}
	for i := range sessions {
		sessions[i].UserID = ""
		sessions[i].Profit = model.ComputeProfit(sessions[i].BuyIn, sessions[i].CashOut)
	}
	return sessions, nil
}

// HasSessions reports whether any guest session is stored.
func (g *Guest) HasSessions(ctx context.Context) (bool, error) {
	sessions, err := g.Sessions(ctx)
	if err != nil {
		return false, err
	}
	return len(sessions) > 0, nil
}

// Clear removes every guest session.
func (g *Guest) Clear(ctx context.Context) error {
	if err := g.kv.Remove(ctx, localstore.KeyGuestSessions); err != nil {
		return fmt.Errorf("failed to clear guest sessions: %w", err)
	}
	return nil
}

// List returns the guest sessions, newest date first.
func (g *Guest) List(ctx context.Context) ([]model.Session, error) {
	sessions, err := g.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	// Later entries first among equal dates, matching the API's created_at order.
	out := make([]model.Session, len(sessions))
	for i, s := range sessions {
		out[len(sessions)-1-i] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Create appends a new session with a millisecond-timestamp ID.
func (g *Guest) Create(ctx context.Context, in model.SessionInput) (*model.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sessions, err := g.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	s := model.Session{ID: g.nextID(sessions)}
	s.Apply(in)
	sessions = append(sessions, s)

	if err := g.save(ctx, sessions); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update replaces the session with the given ID, keeping its ID.
func (g *Guest) Update(ctx context.Context, id string, in model.SessionInput) (*model.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sessions, err := g.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].ID != id {
			continue
		}
		sessions[i].Apply(in)
		if err := g.save(ctx, sessions); err != nil {
			return nil, err
		}
		out := sessions[i].Clone()
		return &out, nil
	}
	return nil, ErrNotFound
}

// Delete removes the session with the given ID.
func (g *Guest) Delete(ctx context.Context, id string) error {
	sessions, err := g.Sessions(ctx)
	if err != nil {
		return err
	}

	kept := sessions[:0]
	for _, s := range sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sessions) {
		return ErrNotFound
	}
	return g.save(ctx, kept)
}

// GetBankroll returns the locally stored bankroll. Malformed data reads as
// an empty bankroll.
func (g *Guest) GetBankroll(ctx context.Context) (model.Bankroll, error) {
	raw, ok, err := g.kv.Get(ctx, localstore.KeyBankroll)
	if err != nil {
		return model.Bankroll{}, fmt.Errorf("failed to read bankroll: %w", err)
	}
	if !ok || raw == "" {
		return model.Bankroll{}, nil
	}

	var b model.Bankroll
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed bankroll")
		return model.Bankroll{}, nil
	}
	return b, nil
}

// SetBankroll replaces the locally stored bankroll.
func (g *Guest) SetBankroll(ctx context.Context, b model.Bankroll) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bankroll: %w", err)
	}
	if err := g.kv.Set(ctx, localstore.KeyBankroll, string(raw)); err != nil {
		return fmt.Errorf("failed to write bankroll: %w", err)
	}
	return nil
}

func (g *Guest) save(ctx context.Context, sessions []model.Session) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode guest sessions: %w", err)
	}
	if err := g.kv.Set(ctx, localstore.KeyGuestSessions, string(raw)); err != nil {
		return fmt.Errorf("failed to write guest sessions: %w", err)
	}
	return nil
}

// nextID returns the current time in milliseconds, bumped past any ID
// already in use.
func (g *Guest) nextID(sessions []model.Session) string {
	used := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		used[s.ID] = struct{}{}
	}

	ms := g.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, taken := used[id]; !taken {
			return id
		}
		ms++
	}
}
