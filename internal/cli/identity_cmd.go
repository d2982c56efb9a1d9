package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"poker-bankroll/internal/cli/formatter"
	"poker-bankroll/internal/identity"
)

func newGuestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Use pokerctl without an account; data stays on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.state(ctx)
			if err != nil {
				return err
			}

			next, err := st.OptInGuest()
			if err != nil {
				if errors.Is(err, identity.ErrInvalidTransition) {
					return fmt.Errorf("already signed in; run `pokerctl logout` first")
				}
				return err
			}
			if err := app.Identity.Save(ctx, next); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Guest mode on. Sessions are stored in "+app.Config.LocalDBPath())
			return nil
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.state(ctx)
			if err != nil {
				return err
			}

			// Reject a bad token before changing any local state.
			if _, err := app.NewRemote(token).List(ctx); err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			hasLocal, err := app.Guest.HasSessions(ctx)
			if err != nil {
				return err
			}
			next, err := st.Authenticate(token, hasLocal)
			if err != nil {
				return err
			}
			if err := app.Identity.Save(ctx, next); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			pendingHint(ctx, app, cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token issued by the bankroll server")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.state(ctx)
			if err != nil {
				return err
			}

			next, err := st.SignOut()
			if err != nil {
				if errors.Is(err, identity.ErrInvalidTransition) {
					return fmt.Errorf("not signed in")
				}
				return err
			}
			if err := app.Identity.Save(ctx, next); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current identity mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.state(ctx)
			if err != nil {
				return err
			}
			guest, err := app.Guest.Sessions(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pairs := [][2]string{
				{"Mode", string(st.Mode)},
				{"Guest sessions", fmt.Sprintf("%d", len(guest))},
				{"Local store", app.Config.LocalDBPath()},
			}
			if st.Remote() {
				pairs = append(pairs, [2]string{"API", app.Config.APIBase})
			}
			fmt.Fprint(out, formatter.RenderKeyValues(pairs))
			pendingHint(ctx, app, out)
			return nil
		},
	}
}
