package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poker-bankroll/internal/localstore"
)

func TestTransitions(t *testing.T) {
	anon := State{Mode: Anonymous}

	guest, err := anon.OptInGuest()
	require.NoError(t, err)
	assert.Equal(t, Guest, guest.Mode)
	assert.False(t, guest.Remote())

	direct, err := anon.Authenticate("tok", false)
	require.NoError(t, err)
	assert.Equal(t, State{Mode: Authenticated, Token: "tok"}, direct)

	migrating, err := guest.Authenticate("tok", true)
	require.NoError(t, err)
	assert.Equal(t, Migrating, migrating.Mode)
	assert.True(t, migrating.Remote())

	done, err := migrating.CompleteMigration()
	require.NoError(t, err)
	assert.Equal(t, State{Mode: Authenticated, Token: "tok"}, done)

	out, err := done.SignOut()
	require.NoError(t, err)
	assert.Equal(t, State{Mode: Anonymous}, out)
}

func TestAuthenticate_RefreshWhileMigrating(t *testing.T) {
	migrating := State{Mode: Migrating, Token: "expired"}

	refreshed, err := migrating.Authenticate("fresh", true)
	require.NoError(t, err)
	assert.Equal(t, State{Mode: Migrating, Token: "fresh"}, refreshed)

	// Nothing left to copy, so there is nothing to wait for.
	cleared, err := migrating.Authenticate("fresh", false)
	require.NoError(t, err)
	assert.Equal(t, State{Mode: Authenticated, Token: "fresh"}, cleared)

	_, err = migrating.Authenticate("", true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (State, error)
	}{
		{"guest from authenticated", func() (State, error) {
			return State{Mode: Authenticated, Token: "t"}.OptInGuest()
		}},
		{"complete without migration", func() (State, error) {
			return State{Mode: Authenticated, Token: "t"}.CompleteMigration()
		}},
		{"sign out anonymous", func() (State, error) {
			return State{Mode: Anonymous}.SignOut()
		}},
		{"sign out guest", func() (State, error) {
			return State{Mode: Guest}.SignOut()
		}},
		{"empty token", func() (State, error) {
			return State{Mode: Anonymous}.Authenticate(" ", false)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	kv, err := localstore.Open(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()
	store := NewStore(kv)

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Anonymous, st.Mode)

	require.NoError(t, store.Save(ctx, State{Mode: Migrating, Token: "tok"}))
	st, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{Mode: Migrating, Token: "tok"}, st)

	require.NoError(t, store.Save(ctx, State{Mode: Anonymous}))
	_, ok, err := kv.Get(ctx, localstore.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LoadRejectsInconsistentData(t *testing.T) {
	kv, err := localstore.Open(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()
	store := NewStore(kv)

	require.NoError(t, kv.Set(ctx, localstore.KeyIdentityMode, "authenticated"))
	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Anonymous, st.Mode, "no token")

	require.NoError(t, kv.Set(ctx, localstore.KeyIdentityMode, "superuser"))
	st, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Anonymous, st.Mode)
}
