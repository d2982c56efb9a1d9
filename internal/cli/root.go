// Package cli implements the pokerctl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"poker-bankroll/internal/config"
	"poker-bankroll/internal/identity"
	"poker-bankroll/internal/migration"
	"poker-bankroll/internal/storage"
)

// ErrNoIdentity is returned by data commands before the user picks guest
// mode or logs in.
var ErrNoIdentity = errors.New("not signed in: run `pokerctl guest` or `pokerctl login --token <token>`")

// App holds what the commands need. main wires it once per process.
type App struct {
	Config   *config.ClientConfig
	Identity *identity.Store
	Guest    *storage.Guest

	// NewRemote builds the API adapter for a bearer token.
	NewRemote func(token string) *storage.Remote
	// IsInteractive reports whether prompts can be shown.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh confirm form.
	Confirm func(title string) (bool, error)
}

// state returns the persisted identity state.
func (a *App) state(ctx context.Context) (identity.State, error) {
	return a.Identity.Load(ctx)
}

// stores picks the adapters for the current identity mode.
func (a *App) stores(ctx context.Context) (storage.Store, storage.BankrollStore, identity.State, error) {
	st, err := a.state(ctx)
	if err != nil {
		return nil, nil, st, err
	}

	switch {
	case st.Remote():
		r := a.NewRemote(st.Token)
		return r, r, st, nil
	case st.Mode == identity.Guest:
		return a.Guest, a.Guest, st, nil
	default:
		return nil, nil, st, ErrNoIdentity
	}
}

func (a *App) migrator(st identity.State) *migration.Migrator {
	return &migration.Migrator{
		Guest:    a.Guest,
		Remote:   a.NewRemote(st.Token),
		Identity: a.Identity,
	}
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithShowHelp(false).Run()
	return ok, err
}

// NewRootCmd creates the top-level "pokerctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "pokerctl",
		Short:         "Track poker sessions and your bankroll",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newGuestCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newStatusCmd(app),
		newSessionCmd(app),
		newStatsCmd(app),
		newBankrollCmd(app),
		newMigrateCmd(app),
	)

	return root
}

// pendingHint prints the migration prompt when guest data awaits a decision.
func pendingHint(ctx context.Context, app *App, w io.Writer) {
	st, err := app.state(ctx)
	if err != nil || st.Mode != identity.Migrating {
		return
	}
	sessions, err := app.Guest.Sessions(ctx)
	if err != nil || len(sessions) == 0 {
		return
	}
	fmt.Fprintf(w, "You have %d guest session(s) on this device. Run `pokerctl migrate` to copy them to your account, or `pokerctl migrate --dismiss` to keep them local.\n", len(sessions))
}

// Execute runs the root command, printing errors to stderr.
func Execute(app *App) int {
	if err := NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
