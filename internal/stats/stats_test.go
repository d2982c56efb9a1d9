package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poker-bankroll/internal/model"
)

func session(id string, date model.Date, gt model.GameType, loc string, buyIn int64, cashOut *int64) model.Session {
	s := model.Session{ID: id}
	in := model.SessionInput{Date: date, GameType: gt, BuyIn: decimal.NewFromInt(buyIn), Location: loc}
	if cashOut != nil {
		v := decimal.NewFromInt(*cashOut)
		in.CashOut = &v
	}
	s.Apply(in)
	return s
}

func i64(v int64) *int64 { return &v }

func assertDecimal(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "want %d, got %s", want, got)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalSessions)
	assert.True(t, s.TotalProfit.IsZero())
	assert.Equal(t, 0.0, s.WinRate)
	assert.Equal(t, NoLocation, s.BestLocation)
	assert.Equal(t, NoLocation, s.WorstLocation)
	assert.Empty(t, s.Timeline)
	assert.Len(t, s.ProfitByGameType, 2)
	assert.True(t, s.ProfitByGameType[model.GameTypeCash].IsZero())
	assert.True(t, s.ProfitByGameType[model.GameTypeTournament].IsZero())
}

func TestSummarize_WinningSession(t *testing.T) {
	s := Summarize([]model.Session{
		session("1", model.NewDate(2024, 1, 1), model.GameTypeCash, "Home", 100, i64(150)),
	})
	assertDecimal(t, 50, s.TotalProfit)
	assert.Equal(t, 1, s.WinningSessions)
	assert.Equal(t, 100.0, s.WinRate)
}

func TestSummarize_OpenSessionCountsZero(t *testing.T) {
	s := Summarize([]model.Session{
		session("1", model.NewDate(2024, 1, 1), model.GameTypeCash, "Home", 100, i64(150)),
		session("2", model.NewDate(2024, 1, 2), model.GameTypeCash, "Casino", 50, nil),
	})
	assertDecimal(t, 50, s.TotalProfit)
	assert.Equal(t, 1, s.WinningSessions)
	assert.Equal(t, 50.0, s.WinRate)
	assertDecimal(t, 0, s.ProfitByLocation["Casino"])
}

func TestSummarize_Breakdowns(t *testing.T) {
	sessions := []model.Session{
		session("1", model.NewDate(2024, 1, 3), model.GameTypeCash, "Bellagio", 200, i64(500)),
		session("2", model.NewDate(2024, 1, 1), model.GameTypeTournament, "Aria", 100, i64(0)),
		session("3", model.NewDate(2024, 1, 2), model.GameTypeCash, "Aria", 100, i64(120)),
		session("4", model.NewDate(2024, 1, 4), model.GameTypeTournament, "Home", 20, i64(10)),
	}
	s := Summarize(sessions)

	assertDecimal(t, 300, s.ProfitByLocation["Bellagio"])
	assertDecimal(t, -80, s.ProfitByLocation["Aria"])
	assertDecimal(t, -10, s.ProfitByLocation["Home"])
	assert.Equal(t, "Bellagio", s.BestLocation)
	assert.Equal(t, "Aria", s.WorstLocation)

	assertDecimal(t, 320, s.ProfitByGameType[model.GameTypeCash])
	assertDecimal(t, -110, s.ProfitByGameType[model.GameTypeTournament])
	assertDecimal(t, 210, s.TotalProfit)
	assert.Equal(t, 50.0, s.WinRate)
}

func TestSummarize_TiesResolveToFirstSeen(t *testing.T) {
	s := Summarize([]model.Session{
		session("1", model.NewDate(2024, 1, 1), model.GameTypeCash, "B", 10, i64(20)),
		session("2", model.NewDate(2024, 1, 1), model.GameTypeCash, "A", 10, i64(20)),
	})
	assert.Equal(t, "B", s.BestLocation)
	assert.Equal(t, "B", s.WorstLocation)
}

func TestTimeline_SortedWithRunningTotal(t *testing.T) {
	sessions := []model.Session{
		session("late", model.NewDate(2024, 2, 1), model.GameTypeCash, "x", 100, i64(50)),
		session("early", model.NewDate(2024, 1, 1), model.GameTypeCash, "x", 100, i64(300)),
		session("open", model.NewDate(2024, 1, 15), model.GameTypeCash, "x", 100, nil),
	}
	points := Timeline(sessions)
	require.Len(t, points, 3)

	assert.Equal(t, "early", points[0].SessionID)
	assert.Equal(t, "open", points[1].SessionID)
	assert.Equal(t, "late", points[2].SessionID)

	assertDecimal(t, 200, points[0].Cumulative)
	assertDecimal(t, 0, points[1].Profit)
	assertDecimal(t, 200, points[1].Cumulative)
	assertDecimal(t, 150, points[2].Cumulative)

	// input order is untouched
	assert.Equal(t, "late", sessions[0].ID)
}

func TestFilterByDate(t *testing.T) {
	sessions := []model.Session{
		session("1", model.NewDate(2024, 1, 1), model.GameTypeCash, "x", 1, nil),
		session("2", model.NewDate(2024, 1, 10), model.GameTypeCash, "x", 1, nil),
		session("3", model.NewDate(2024, 1, 20), model.GameTypeCash, "x", 1, nil),
	}
	from := model.NewDate(2024, 1, 10)
	to := model.NewDate(2024, 1, 20)

	assert.Len(t, FilterByDate(sessions, nil, nil), 3)
	assert.Len(t, FilterByDate(sessions, &from, nil), 2)
	assert.Len(t, FilterByDate(sessions, nil, &from), 2)

	both := FilterByDate(sessions, &from, &to)
	require.Len(t, both, 2)
	assert.Equal(t, "2", both[0].ID)
	assert.Equal(t, "3", both[1].ID)
}

func TestBankroll(t *testing.T) {
	starting := decimal.NewFromInt(1000)
	goal := decimal.NewFromInt(2000)

	b := Bankroll(model.Bankroll{Starting: &starting, Goal: &goal}, decimal.NewFromInt(250))
	require.NotNil(t, b.Current)
	assertDecimal(t, 1250, *b.Current)
	require.NotNil(t, b.Progress)
	assert.InDelta(t, 25.0, *b.Progress, 1e-9)

	over := Bankroll(model.Bankroll{Starting: &starting, Goal: &goal}, decimal.NewFromInt(5000))
	assert.Equal(t, 100.0, *over.Progress)

	under := Bankroll(model.Bankroll{Starting: &starting, Goal: &goal}, decimal.NewFromInt(-300))
	assert.Equal(t, 0.0, *under.Progress)
	assertDecimal(t, 700, *under.Current)
}

func TestBankroll_Undefined(t *testing.T) {
	starting := decimal.NewFromInt(1000)
	lowGoal := decimal.NewFromInt(500)

	none := Bankroll(model.Bankroll{}, decimal.NewFromInt(10))
	assert.Nil(t, none.Current)
	assert.Nil(t, none.Progress)

	noGoal := Bankroll(model.Bankroll{Starting: &starting}, decimal.NewFromInt(10))
	assertDecimal(t, 1010, *noGoal.Current)
	assert.Nil(t, noGoal.Progress)

	inverted := Bankroll(model.Bankroll{Starting: &starting, Goal: &lowGoal}, decimal.Zero)
	assert.Nil(t, inverted.Progress)

	equal := Bankroll(model.Bankroll{Starting: &starting, Goal: &starting}, decimal.Zero)
	assert.Nil(t, equal.Progress)
}

func TestBuildReport(t *testing.T) {
	starting := decimal.NewFromInt(100)
	r := BuildReport([]model.Session{
		session("1", model.NewDate(2024, 1, 1), model.GameTypeCash, "Home", 10, i64(40)),
	}, model.Bankroll{Starting: &starting})
	assertDecimal(t, 30, r.Summary.TotalProfit)
	assertDecimal(t, 130, *r.Bankroll.Current)
}

func TestBuildRangeReport(t *testing.T) {
	starting := decimal.NewFromInt(100)
	sessions := []model.Session{
		session("1", model.NewDate(2024, 1, 1), model.GameTypeCash, "Home", 10, i64(40)),
		session("2", model.NewDate(2024, 2, 1), model.GameTypeCash, "Club", 50, i64(0)),
	}
	from := model.NewDate(2024, 2, 1)

	r := BuildRangeReport(sessions, model.Bankroll{Starting: &starting}, &from, nil)
	assert.Equal(t, 1, r.Summary.TotalSessions)
	assertDecimal(t, -50, r.Summary.TotalProfit)
	// Current bankroll counts every session, not just the range
	assertDecimal(t, 80, *r.Bankroll.Current)

	all := BuildRangeReport(sessions, model.Bankroll{Starting: &starting}, nil, nil)
	assert.Equal(t, 2, all.Summary.TotalSessions)
}
