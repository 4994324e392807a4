package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock_DecodesDecimalStrings(t *testing.T) {
	// DRF serializes DecimalField values as strings
	payload := `{"id":1,"symbol":"AAPL","company_name":"Apple Inc.","last_price":"175.25","daily_change_percent":"2.35","last_updated":"2024-01-01T15:30:00Z"}`

	var s Stock
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, "AAPL", s.Symbol)
	assert.True(t, s.LastPrice.Equal(decimal.RequireFromString("175.25")))
	assert.True(t, s.DailyChangePercent.Equal(decimal.RequireFromString("2.35")))
	assert.Equal(t, "2024-01-01T15:30:00Z", s.LastUpdated)
}

func TestStock_DecodesNumbers(t *testing.T) {
	payload := `{"id":2,"symbol":"MSFT","company_name":"Microsoft","last_price":410.5,"daily_change_percent":-1.2,"last_updated":"bad"}`

	var s Stock
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.True(t, s.LastPrice.Equal(decimal.NewFromFloat(410.5)))
	assert.True(t, s.DailyChangePercent.IsNegative())
}

func TestTrade_Action(t *testing.T) {
	var tr Trade
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"stock":1,"stock_symbol":"AAPL","action":"BUY","quantity":1,"notional":10,"status":"filled"}`), &tr))

	assert.True(t, tr.Action.IsBuy())
	assert.False(t, tr.Action.IsSell())
	assert.True(t, tr.Notional.Equal(decimal.NewFromInt(10)))
	assert.True(t, ActionSell.IsSell())
}

func TestDashboardSummary_Decode(t *testing.T) {
	payload := `{"total_symbols":1,"open_positions":1,"todays_buys":1,"todays_sells":0,"total_notional":"10.00","realized_profit":"-1.50"}`

	var s DashboardSummary
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, 1, s.TotalSymbols)
	assert.Equal(t, 0, s.TodaysSells)
	assert.True(t, s.RealizedProfit.IsNegative())
}
