package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestComputeProfit(t *testing.T) {
	p := ComputeProfit(decimal.NewFromInt(100), amount("150"))
	require.NotNil(t, p)
	assert.True(t, p.Equal(decimal.NewFromInt(50)))

	assert.Nil(t, ComputeProfit(decimal.NewFromInt(50), nil))

	// A recorded zero cash-out is a full loss, not an open session.
	p = ComputeProfit(decimal.NewFromInt(40), amount("0"))
	require.NotNil(t, p)
	assert.True(t, p.Equal(decimal.NewFromInt(-40)))
}

func TestSession_ApplyRecomputesProfit(t *testing.T) {
	s := Session{ID: "abc", UserID: "u1"}
	s.Apply(SessionInput{
		Date:     NewDate(2024, 3, 1),
		GameType: GameTypeCash,
		BuyIn:    decimal.NewFromInt(100),
		CashOut:  amount("150"),
		Location: "Bellagio",
	})
	require.NotNil(t, s.Profit)
	assert.True(t, s.Profit.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "u1", s.UserID)

	in := s.Input()
	in.CashOut = nil
	s.Apply(in)
	assert.Nil(t, s.Profit)
	assert.Nil(t, s.CashOut)
	assert.True(t, s.ProfitOrZero().IsZero())
}

func TestSession_InputCopiesCashOut(t *testing.T) {
	s := Session{BuyIn: decimal.NewFromInt(10), CashOut: amount("20")}
	in := s.Input()
	*in.CashOut = decimal.NewFromInt(99)
	assert.True(t, s.CashOut.Equal(decimal.NewFromInt(20)))
}

func TestSessionInput_Validate(t *testing.T) {
	valid := SessionInput{
		Date:     NewDate(2024, 1, 2),
		GameType: GameTypeTournament,
		BuyIn:    decimal.NewFromInt(55),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SessionInput)
	}{
		{"missing date", func(in *SessionInput) { in.Date = Date{} }},
		{"unknown game type", func(in *SessionInput) { in.GameType = "sitngo" }},
		{"negative buy-in", func(in *SessionInput) { in.BuyIn = decimal.NewFromInt(-1) }},
		{"negative cash-out", func(in *SessionInput) { in.CashOut = amount("-5") }},
		{"sub-cent buy-in", func(in *SessionInput) { in.BuyIn = decimal.RequireFromString("10.005") }},
		{"sub-cent cash-out", func(in *SessionInput) { in.CashOut = amount("20.004") }},
		{"buy-in too large", func(in *SessionInput) { in.BuyIn = decimal.New(1, 12) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.ErrorIs(t, in.Validate(), ErrInvalidSession)
		})
	}
}

func TestSessionInput_ValidateAcceptsCents(t *testing.T) {
	in := SessionInput{
		Date:     NewDate(2024, 1, 2),
		GameType: GameTypeCash,
		BuyIn:    decimal.RequireFromString("10.50"),
		// Trailing zeros beyond two places are still whole cents.
		CashOut: amount("20.0400"),
	}
	require.NoError(t, in.Validate())

	in.BuyIn = decimal.RequireFromString("999999999999.99")
	require.NoError(t, in.Validate())
}

func TestSessionInput_JSONCoercesNumbers(t *testing.T) {
	var in SessionInput
	err := json.Unmarshal([]byte(`{"date":"2024-05-06","gameType":"cash","buyIn":100,"cashOut":"150.5","location":"Home"}`), &in)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", in.Date.String())
	assert.True(t, in.BuyIn.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, in.CashOut)
	assert.True(t, in.CashOut.Equal(decimal.RequireFromString("150.5")))

	var open SessionInput
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-05-06","gameType":"cash","buyIn":"50","cashOut":null}`), &open))
	assert.Nil(t, open.CashOut)
}

func TestSession_JSONShape(t *testing.T) {
	s := Session{ID: "1", Date: NewDate(2024, 2, 29), GameType: GameTypeCash, BuyIn: decimal.NewFromInt(50)}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "2024-02-29", raw["date"])
	assert.Nil(t, raw["cashOut"])
	assert.Nil(t, raw["profit"])
	assert.NotContains(t, raw, "userId")
	assert.NotContains(t, raw, "createdAt")
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2023-12-31T22:00:00Z"`), &d))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"31/12/2023"`), &d))
}

// TestProfitDerivationProperty checks that profit is always cashOut - buyIn
// and is absent exactly when cashOut is absent.
func TestProfitDerivationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buyIn := decimal.New(rapid.Int64Range(0, 10_000_000).Draw(t, "buyIn"), -2)
		var cashOut *decimal.Decimal
		if rapid.Bool().Draw(t, "closed") {
			v := decimal.New(rapid.Int64Range(0, 10_000_000).Draw(t, "cashOut"), -2)
			cashOut = &v
		}

		var s Session
		s.Apply(SessionInput{Date: NewDate(2024, 1, 1), GameType: GameTypeCash, BuyIn: buyIn, CashOut: cashOut})

		if cashOut == nil {
			if s.Profit != nil {
				t.Fatalf("profit should be absent for an open session, got %s", s.Profit)
			}
			return
		}
		if s.Profit == nil || !s.Profit.Equal(cashOut.Sub(buyIn)) {
			t.Fatalf("profit mismatch: buyIn=%s cashOut=%s profit=%v", buyIn, cashOut, s.Profit)
		}
	})
}
