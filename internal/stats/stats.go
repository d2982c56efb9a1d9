// Package stats computes aggregate statistics over recorded sessions.
// Every function is pure: the input slice is never modified.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"poker-bankroll/internal/model"
)

// NoLocation is reported as best and worst location when there are no sessions.
const NoLocation = "N/A"

// Point is one entry of the profit-over-time series.
type Point struct {
	Date       model.Date      `json:"date"`
	SessionID  string          `json:"sessionId"`
	Profit     decimal.Decimal `json:"profit"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// Summary holds the aggregates shown on the dashboard.
type Summary struct {
	TotalSessions    int                                `json:"totalSessions"`
	WinningSessions  int                                `json:"winningSessions"`
	TotalProfit      decimal.Decimal                    `json:"totalProfit"`
	WinRate          float64                            `json:"winRate"`
	ProfitByLocation map[string]decimal.Decimal         `json:"profitByLocation"`
	BestLocation     string                             `json:"bestLocation"`
	WorstLocation    string                             `json:"worstLocation"`
	ProfitByGameType map[model.GameType]decimal.Decimal `json:"profitByGameType"`
	Timeline         []Point                            `json:"timeline"`
}

// Summarize aggregates sessions. Open sessions count as zero profit and
// are never winning sessions.
func Summarize(sessions []model.Session) Summary {
	s := Summary{
		TotalSessions:    len(sessions),
		TotalProfit:      decimal.Zero,
		ProfitByLocation: make(map[string]decimal.Decimal),
		BestLocation:     NoLocation,
		WorstLocation:    NoLocation,
		ProfitByGameType: make(map[model.GameType]decimal.Decimal),
		Timeline:         Timeline(sessions),
	}
	for _, gt := range model.GameTypes() {
		s.ProfitByGameType[gt] = decimal.Zero
	}

	// locations keeps first-seen order so ties resolve deterministically.
	var locations []string
	for _, session := range sessions {
		profit := session.ProfitOrZero()
		s.TotalProfit = s.TotalProfit.Add(profit)
		if profit.IsPositive() {
			s.WinningSessions++
		}

		if _, seen := s.ProfitByLocation[session.Location]; !seen {
			locations = append(locations, session.Location)
		}
		s.ProfitByLocation[session.Location] = s.ProfitByLocation[session.Location].Add(profit)
		s.ProfitByGameType[session.GameType] = s.ProfitByGameType[session.GameType].Add(profit)
	}

	s.WinRate = WinRate(s.WinningSessions, s.TotalSessions)
	if len(locations) > 0 {
		s.BestLocation, s.WorstLocation = extremes(locations, s.ProfitByLocation)
	}
	return s
}

// WinRate returns winning/total as a percentage, or 0 when total is 0.
func WinRate(winning, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(winning) / float64(total) * 100
}

// Timeline returns sessions sorted by ascending date, paired with each
// session's profit and the running total. Sessions on the same date keep
// their input order.
func Timeline(sessions []model.Session) []Point {
	sorted := make([]model.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]Point, 0, len(sorted))
	running := decimal.Zero
	for _, session := range sorted {
		profit := session.ProfitOrZero()
		running = running.Add(profit)
		points = append(points, Point{
			Date:       session.Date,
			SessionID:  session.ID,
			Profit:     profit,
			Cumulative: running,
		})
	}
	return points
}

// FilterByDate keeps sessions whose date lies within [from, to].
// A nil bound is open.
func FilterByDate(sessions []model.Session, from, to *model.Date) []model.Session {
	out := make([]model.Session, 0, len(sessions))
	for _, session := range sessions {
		if from != nil && session.Date.Before(*from) {
			continue
		}
		if to != nil && session.Date.After(*to) {
			continue
		}
		out = append(out, session)
	}
	return out
}

func extremes(order []string, totals map[string]decimal.Decimal) (best, worst string) {
	best, worst = order[0], order[0]
	for _, loc := range order[1:] {
		if totals[loc].GreaterThan(totals[best]) {
			best = loc
		}
		if totals[loc].LessThan(totals[worst]) {
			worst = loc
		}
	}
	return best, worst
}
