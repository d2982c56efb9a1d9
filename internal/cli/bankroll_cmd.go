package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"poker-bankroll/internal/cli/formatter"
	"poker-bankroll/internal/stats"
)

func newBankrollCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bankroll",
		Short: "Show or set the starting bankroll and goal",
	}

	cmd.AddCommand(
		newBankrollShowCmd(app),
		newBankrollSetCmd(app),
	)

	return cmd
}

func newBankrollShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the bankroll and progress toward the goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, bankrolls, _, err := app.stores(ctx)
			if err != nil {
				return err
			}

			b, err := bankrolls.GetBankroll(ctx)
			if err != nil {
				return err
			}
			sessions, err := store.List(ctx)
			if err != nil {
				return err
			}

			summary := stats.Bankroll(b, stats.Summarize(sessions).TotalProfit)
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderBox("Bankroll", renderBankroll(summary)))
			return nil
		},
	}
}

func newBankrollSetCmd(app *App) *cobra.Command {
	var starting, goal string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the starting bankroll and/or goal; \"none\" clears a value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, bankrolls, _, err := app.stores(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("starting") && !cmd.Flags().Changed("goal") {
				return fmt.Errorf("nothing to set: pass --starting and/or --goal")
			}

			b, err := bankrolls.GetBankroll(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("starting") {
				if b.Starting, err = parseAmount("starting", starting); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("goal") {
				if b.Goal, err = parseAmount("goal", goal); err != nil {
					return err
				}
			}

			if err := bankrolls.SetBankroll(ctx, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bankroll saved: starting %s, goal %s\n",
				formatter.OptionalMoney(b.Starting), formatter.OptionalMoney(b.Goal))
			return nil
		},
	}

	cmd.Flags().StringVar(&starting, "starting", "", "Starting bankroll")
	cmd.Flags().StringVar(&goal, "goal", "", "Bankroll goal")

	return cmd
}
