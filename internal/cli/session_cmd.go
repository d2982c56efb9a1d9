package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"poker-bankroll/internal/cli/formatter"
	"poker-bankroll/internal/model"
	"poker-bankroll/internal/stats"
	"poker-bankroll/internal/storage"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record and manage poker sessions",
	}

	cmd.AddCommand(
		newSessionAddCmd(app),
		newSessionListCmd(app),
		newSessionEditCmd(app),
		newSessionDeleteCmd(app),
	)

	return cmd
}

// sessionFlags are the fields shared by add and edit.
type sessionFlags struct {
	date     string
	gameType string
	buyIn    string
	cashOut  string
	location string
	notes    string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Session date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.gameType, "game", string(model.GameTypeCash), "Game type: cash or tournament")
	cmd.Flags().StringVar(&f.buyIn, "buy-in", "", "Total buy-in")
	cmd.Flags().StringVar(&f.cashOut, "cash-out", "", "Cash-out amount; \"none\" for a session still in progress")
	cmd.Flags().StringVar(&f.location, "location", "", "Where the session was played")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
}

// apply overlays the flags the user set onto base.
func (f *sessionFlags) apply(cmd *cobra.Command, base model.SessionInput) (model.SessionInput, error) {
	in := base
	changed := cmd.Flags().Changed

	if changed("date") {
		d, err := model.ParseDate(strings.TrimSpace(f.date))
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	if changed("game") || in.GameType == "" {
		in.GameType = model.GameType(strings.ToLower(strings.TrimSpace(f.gameType)))
	}
	if changed("buy-in") {
		v, err := parseAmount("buy-in", f.buyIn)
		if err != nil {
			return in, err
		}
		if v == nil {
			return in, fmt.Errorf("buy-in is required")
		}
		in.BuyIn = *v
	}
	if changed("cash-out") {
		v, err := parseAmount("cash-out", f.cashOut)
		if err != nil {
			return in, err
		}
		in.CashOut = v
	}
	if changed("location") {
		in.Location = strings.TrimSpace(f.location)
	}
	if changed("notes") {
		in.Notes = f.notes
	}

	return in, in.Validate()
}

// parseAmount reads a decimal flag. Empty or "none" means unset.
func parseAmount(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: must be a number", name, raw)
	}
	return &d, nil
}

func newSessionAddCmd(app *App) *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := app.stores(ctx)
			if err != nil {
				return err
			}

			in, err := f.apply(cmd, model.SessionInput{Date: model.DateOf(time.Now())})
			if err != nil {
				return err
			}

			s, err := store.Create(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded session %s (%s, profit %s)\n",
				s.ID, s.Date, formatter.OptionalProfit(s.Profit))
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("buy-in")

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := app.stores(ctx)
			if err != nil {
				return err
			}
			from, to, err := parseRange(fromFlag, toFlag)
			if err != nil {
				return err
			}

			sessions, err := store.List(ctx)
			if err != nil {
				return err
			}
			sessions = stats.FilterByDate(sessions, from, to)

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}

			headers := []string{"ID", "DATE", "GAME", "BUY-IN", "CASH-OUT", "PROFIT", "LOCATION", "NOTES"}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					s.ID,
					s.Date.String(),
					string(s.GameType),
					formatter.Money(s.BuyIn),
					formatter.OptionalMoney(s.CashOut),
					formatter.OptionalProfit(s.Profit),
					s.Location,
					formatter.Dim(formatter.Truncate(s.Notes, 40)),
				})
			}

			fmt.Fprint(out, formatter.RenderBox("Sessions", formatter.RenderTable(headers, rows)))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Only sessions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Only sessions on or before this date (YYYY-MM-DD)")

	return cmd
}

func newSessionEditCmd(app *App) *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a recorded session; unset flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := app.stores(ctx)
			if err != nil {
				return err
			}

			existing, err := findSession(cmd, store, args[0])
			if err != nil {
				return err
			}

			in, err := f.apply(cmd, existing.Input())
			if err != nil {
				return err
			}

			s, err := store.Update(ctx, existing.ID, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated session %s (profit %s)\n", s.ID, formatter.OptionalProfit(s.Profit))
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func newSessionDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := app.stores(ctx)
			if err != nil {
				return err
			}

			s, err := findSession(cmd, store, args[0])
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete without confirmation; pass --yes")
				}
				ok, err := app.confirm(fmt.Sprintf("Delete the %s session at %s on %s?", s.GameType, s.Location, s.Date))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := store.Delete(ctx, s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", s.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// findSession looks id up in the current store.
func findSession(cmd *cobra.Command, store storage.Store, id string) (*model.Session, error) {
	sessions, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
}

func parseRange(fromFlag, toFlag string) (from, to *model.Date, err error) {
	parse := func(name, raw string) (*model.Date, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		return &d, nil
	}

	if from, err = parse("from", fromFlag); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to", toFlag); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, errors.New("--from must not be after --to")
	}
	return from, to, nil
}
