package models

import "github.com/shopspring/decimal"

// DashboardSummary holds the aggregate figures served by GET /summary/
type DashboardSummary struct {
	TotalSymbols   int             `json:"total_symbols"`
	OpenPositions  int             `json:"open_positions"`
	TodaysBuys     int             `json:"todays_buys"`
	TodaysSells    int             `json:"todays_sells"`
	TotalNotional  decimal.Decimal `json:"total_notional"`
	RealizedProfit decimal.Decimal `json:"realized_profit"`
}
