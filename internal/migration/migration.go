// Package migration copies guest sessions into the authenticated store once
// the user signs in.
package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/identity"
	"poker-bankroll/internal/model"
)

// ErrNotPending is returned by Run and Dismiss when the client is not
// waiting on a migration.
var ErrNotPending = errors.New("no migration pending")

// PartialError reports a migration that stopped part way. The local guest
// sessions are left in place; the Copied records already exist remotely.
type PartialError struct {
	Copied int
	Total  int
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("migration stopped after %d of %d sessions: %v", e.Copied, e.Total, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// GuestSource is the local side of the migration.
type GuestSource interface {
	Sessions(ctx context.Context) ([]model.Session, error)
	Clear(ctx context.Context) error
}

// Creator is the remote side of the migration.
type Creator interface {
	Create(ctx context.Context, in model.SessionInput) (*model.Session, error)
}

// IdentityStore loads and saves the identity state.
type IdentityStore interface {
	Load(ctx context.Context) (identity.State, error)
	Save(ctx context.Context, st identity.State) error
}

// Migrator moves guest sessions to the remote store.
type Migrator struct {
	Guest    GuestSource
	Remote   Creator
	Identity IdentityStore
}

// Pending reports whether the user authenticated while holding guest
// sessions that have been neither migrated nor dismissed.
func (m *Migrator) Pending(ctx context.Context) (bool, error) {
	st, err := m.Identity.Load(ctx)
	if err != nil {
		return false, err
	}
	if st.Mode != identity.Migrating {
		return false, nil
	}

	sessions, err := m.Guest.Sessions(ctx)
	if err != nil {
		return false, err
	}
	return len(sessions) > 0, nil
}

// Run creates every guest session remotely, one at a time in stored order.
// When all succeed the guest sessions are cleared and the identity becomes
// Authenticated. It returns the number of sessions copied.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	st, err := m.Identity.Load(ctx)
	if err != nil {
		return 0, err
	}
	if st.Mode != identity.Migrating {
		return 0, ErrNotPending
	}

	sessions, err := m.Guest.Sessions(ctx)
	if err != nil {
		return 0, err
	}

	for i, s := range sessions {
		if _, err := m.Remote.Create(ctx, s.Input()); err != nil {
			log.Warn().Err(err).Int("copied", i).Int("total", len(sessions)).Msg("Migration stopped")
			return i, &PartialError{Copied: i, Total: len(sessions), Err: err}
		}
		log.Debug().Str("guest_id", s.ID).Msg("Migrated guest session")
	}

	if err := m.Guest.Clear(ctx); err != nil {
		return len(sessions), err
	}
	if err := m.complete(ctx, st); err != nil {
		return len(sessions), err
	}

	log.Info().Int("sessions", len(sessions)).Msg("Guest sessions migrated")
	return len(sessions), nil
}

// Dismiss completes the transition without copying. Guest sessions stay on
// disk and are no longer offered for migration.
func (m *Migrator) Dismiss(ctx context.Context) error {
	st, err := m.Identity.Load(ctx)
	if err != nil {
		return err
	}
	if st.Mode != identity.Migrating {
		return ErrNotPending
	}
	return m.complete(ctx, st)
}

func (m *Migrator) complete(ctx context.Context, st identity.State) error {
	next, err := st.CompleteMigration()
	if err != nil {
		return err
	}
	return m.Identity.Save(ctx, next)
}
