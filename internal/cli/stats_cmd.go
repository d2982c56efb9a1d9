package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"poker-bankroll/internal/cli/formatter"
	"poker-bankroll/internal/model"
	"poker-bankroll/internal/stats"
	"poker-bankroll/internal/storage"
)

func newStatsCmd(app *App) *cobra.Command {
	var fromFlag, toFlag string
	var timeline bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show profit, win rate and bankroll progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, bankrolls, _, err := app.stores(ctx)
			if err != nil {
				return err
			}
			from, to, err := parseRange(fromFlag, toFlag)
			if err != nil {
				return err
			}

			var report stats.Report
			if remote, ok := store.(*storage.Remote); ok {
				report, err = remote.Report(ctx, from, to)
				if err != nil {
					return err
				}
			} else {
				sessions, err := store.List(ctx)
				if err != nil {
					return err
				}
				b, err := bankrolls.GetBankroll(ctx)
				if err != nil {
					return err
				}
				report = stats.BuildRangeReport(sessions, b, from, to)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderReport(report, timeline))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Only sessions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Only sessions on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&timeline, "timeline", false, "Also print the cumulative profit series")

	return cmd
}

func renderReport(r stats.Report, timeline bool) string {
	s := r.Summary
	var b strings.Builder

	b.WriteString(formatter.RenderKeyValues([][2]string{
		{"Sessions", fmt.Sprintf("%d", s.TotalSessions)},
		{"Total profit", formatter.Profit(s.TotalProfit)},
		{"Win rate", fmt.Sprintf("%.1f%%", s.WinRate)},
		{"Best location", s.BestLocation},
		{"Worst location", s.WorstLocation},
	}))

	b.WriteString("\n" + formatter.Header("By game type") + "\n")
	var games [][2]string
	for _, gt := range model.GameTypes() {
		games = append(games, [2]string{string(gt), formatter.Profit(s.ProfitByGameType[gt])})
	}
	b.WriteString(formatter.RenderKeyValues(games))

	if len(s.ProfitByLocation) > 0 {
		b.WriteString("\n" + formatter.Header("By location") + "\n")
		rows := make([][]string, 0, len(s.ProfitByLocation))
		for _, loc := range sortedLocations(s.ProfitByLocation) {
			rows = append(rows, []string{loc, formatter.Profit(s.ProfitByLocation[loc])})
		}
		b.WriteString(formatter.RenderTable([]string{"LOCATION", "PROFIT"}, rows))
	}

	b.WriteString("\n" + formatter.Header("Bankroll") + "\n")
	b.WriteString(renderBankroll(r.Bankroll))

	if timeline && len(s.Timeline) > 0 {
		b.WriteString("\n" + formatter.Header("Timeline") + "\n")
		rows := make([][]string, 0, len(s.Timeline))
		for _, p := range s.Timeline {
			rows = append(rows, []string{p.Date.String(), formatter.Profit(p.Profit), formatter.Profit(p.Cumulative)})
		}
		b.WriteString(formatter.RenderTable([]string{"DATE", "PROFIT", "CUMULATIVE"}, rows))
	}

	return formatter.RenderBox("Stats", b.String())
}

func renderBankroll(bs stats.BankrollSummary) string {
	pairs := [][2]string{
		{"Starting", formatter.OptionalMoney(bs.Starting)},
		{"Current", formatter.OptionalMoney(bs.Current)},
		{"Goal", formatter.OptionalMoney(bs.Goal)},
	}
	if bs.Progress != nil {
		pairs = append(pairs, [2]string{"Progress", formatter.RenderProgress(*bs.Progress, 20)})
	}
	return formatter.RenderKeyValues(pairs)
}

// sortedLocations orders locations by profit, best first.
func sortedLocations(m map[string]decimal.Decimal) []string {
	locs := make([]string, 0, len(m))
	for loc := range m {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		if c := m[locs[i]].Cmp(m[locs[j]]); c != 0 {
			return c > 0
		}
		return locs[i] < locs[j]
	})
	return locs
}
