package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"poker-bankroll/internal/migration"
)

func newMigrateCmd(app *App) *cobra.Command {
	var dismiss bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy guest sessions on this device into your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.state(ctx)
			if err != nil {
				return err
			}
			m := app.migrator(st)
			out := cmd.OutOrStdout()

			if dismiss {
				if err := m.Dismiss(ctx); err != nil {
					return describeMigrateErr(err)
				}
				fmt.Fprintln(out, "Migration dismissed. Guest sessions stay on this device.")
				return nil
			}

			n, err := m.Run(ctx)
			if err != nil {
				var partial *migration.PartialError
				if errors.As(err, &partial) {
					return fmt.Errorf("copied %d of %d sessions before failing; guest data was kept, "+
						"and rerunning copies every session again: %w", partial.Copied, partial.Total, partial.Err)
				}
				return describeMigrateErr(err)
			}

			fmt.Fprintf(out, "Migrated %d session(s) to your account.\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dismiss, "dismiss", false, "Stop offering the migration without copying anything")

	return cmd
}

func describeMigrateErr(err error) error {
	if errors.Is(err, migration.ErrNotPending) {
		return fmt.Errorf("nothing to migrate: log in while guest sessions exist on this device")
	}
	return err
}
