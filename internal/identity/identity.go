// Package identity tracks whether the client acts as an anonymous visitor,
// a guest, or an authenticated user.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"poker-bankroll/internal/localstore"
)

// ErrInvalidTransition is returned when a mode change is not allowed from
// the current mode.
var ErrInvalidTransition = errors.New("invalid identity transition")

// Mode is the client's identity mode.
type Mode string

// Identity modes.
const (
	Anonymous     Mode = "anonymous"
	Guest         Mode = "guest"
	Migrating     Mode = "migrating"
	Authenticated Mode = "authenticated"
)

// State is the current mode plus the bearer token while one is held.
type State struct {
	Mode  Mode
	Token string
}

// Remote reports whether sessions should go to the API.
func (s State) Remote() bool {
	return s.Mode == Authenticated || s.Mode == Migrating
}

func (s State) transition(to Mode) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Mode, to)
}

// OptInGuest moves an anonymous visitor into guest mode.
func (s State) OptInGuest() (State, error) {
	if s.Mode == Guest {
		return s, nil
	}
	if s.Mode != Anonymous {
		return s, s.transition(Guest)
	}
	return State{Mode: Guest}, nil
}

// Authenticate records token. Local guest data puts the client in
// Migrating until the migration is run or dismissed. An authenticated or
// migrating client may replace its token; a pending migration stays pending.
func (s State) Authenticate(token string, hasLocalData bool) (State, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return s, fmt.Errorf("%w: empty token", ErrInvalidTransition)
	}

	switch s.Mode {
	case Anonymous, Guest:
		if hasLocalData {
			return State{Mode: Migrating, Token: token}, nil
		}
		return State{Mode: Authenticated, Token: token}, nil
	case Migrating:
		if hasLocalData {
			return State{Mode: Migrating, Token: token}, nil
		}
		return State{Mode: Authenticated, Token: token}, nil
	case Authenticated:
		return State{Mode: Authenticated, Token: token}, nil
	default:
		return s, s.transition(Authenticated)
	}
}

// CompleteMigration finishes a pending migration.
func (s State) CompleteMigration() (State, error) {
	if s.Mode != Migrating {
		return s, s.transition(Authenticated)
	}
	return State{Mode: Authenticated, Token: s.Token}, nil
}

// SignOut drops the token. Guest data left on disk is untouched.
func (s State) SignOut() (State, error) {
	if s.Mode != Authenticated && s.Mode != Migrating {
		return s, s.transition(Anonymous)
	}
	return State{Mode: Anonymous}, nil
}

// KV is the slice of the local store identity persistence needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Store persists State in the local store.
type Store struct {
	kv KV
}

// NewStore creates a Store over kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the persisted state. Missing or unknown data reads as
// Anonymous, as does a remote mode without a token.
func (s *Store) Load(ctx context.Context) (State, error) {
	raw, _, err := s.kv.Get(ctx, localstore.KeyIdentityMode)
	if err != nil {
		return State{}, fmt.Errorf("failed to read identity mode: %w", err)
	}
	token, _, err := s.kv.Get(ctx, localstore.KeyAuthToken)
	if err != nil {
		return State{}, fmt.Errorf("failed to read auth token: %w", err)
	}

	st := State{Mode: Mode(raw), Token: token}
	switch st.Mode {
	case Guest:
		st.Token = ""
	case Migrating, Authenticated:
		if st.Token == "" {
			return State{Mode: Anonymous}, nil
		}
	default:
		return State{Mode: Anonymous}, nil
	}
	return st, nil
}

// Save persists st.
func (s *Store) Save(ctx context.Context, st State) error {
	if err := s.kv.Set(ctx, localstore.KeyIdentityMode, string(st.Mode)); err != nil {
		return fmt.Errorf("failed to write identity mode: %w", err)
	}
	if st.Token == "" {
		if err := s.kv.Remove(ctx, localstore.KeyAuthToken); err != nil {
			return fmt.Errorf("failed to clear auth token: %w", err)
		}
		return nil
	}
	if err := s.kv.Set(ctx, localstore.KeyAuthToken, st.Token); err != nil {
		return fmt.Errorf("failed to write auth token: %w", err)
	}
	return nil
}
