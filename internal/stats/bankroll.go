package stats

import (
	"github.com/shopspring/decimal"

	"poker-bankroll/internal/model"
)

var hundred = decimal.NewFromInt(100)

// BankrollSummary combines the bankroll settings with session results.
// Current is nil while no starting bankroll is set. Progress is nil unless
// both values are set and the goal lies above the starting bankroll.
type BankrollSummary struct {
	Starting *decimal.Decimal `json:"starting"`
	Goal     *decimal.Decimal `json:"goal"`
	Current  *decimal.Decimal `json:"current"`
	Progress *float64         `json:"progress"`
}

// Bankroll derives the current bankroll and goal progress.
func Bankroll(b model.Bankroll, totalProfit decimal.Decimal) BankrollSummary {
	out := BankrollSummary{Starting: b.Starting, Goal: b.Goal}
	if b.Starting == nil {
		return out
	}

	current := b.Starting.Add(totalProfit)
	out.Current = &current

	if b.Goal == nil || !b.Goal.GreaterThan(*b.Starting) {
		return out
	}
	ratio := current.Sub(*b.Starting).Div(b.Goal.Sub(*b.Starting)).Mul(hundred)
	pct, _ := ratio.Float64()
	pct = clamp(pct, 0, 100)
	out.Progress = &pct
	return out
}

// Report is the full statistics payload for one identity.
type Report struct {
	Summary  Summary         `json:"summary"`
	Bankroll BankrollSummary `json:"bankroll"`
}

// BuildReport summarizes sessions and applies the result to the bankroll.
func BuildReport(sessions []model.Session, b model.Bankroll) Report {
	summary := Summarize(sessions)
	return Report{
		Summary:  summary,
		Bankroll: Bankroll(b, summary.TotalProfit),
	}
}

// BuildRangeReport summarizes the sessions dated within [from, to]. The
// bankroll stays anchored to the profit of every session, since the current
// bankroll does not depend on the range being viewed.
func BuildRangeReport(sessions []model.Session, b model.Bankroll, from, to *model.Date) Report {
	if from == nil && to == nil {
		return BuildReport(sessions, b)
	}
	return Report{
		Summary:  Summarize(FilterByDate(sessions, from, to)),
		Bankroll: Bankroll(b, Summarize(sessions).TotalProfit),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
