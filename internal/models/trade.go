package models

import "github.com/shopspring/decimal"

// TradeAction is the side of a trade
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// IsBuy reports whether the action is BUY
func (a TradeAction) IsBuy() bool { return a == ActionBuy }

// IsSell reports whether the action is SELL
func (a TradeAction) IsSell() bool { return a == ActionSell }

// Trade is an executed order as served by GET /trades/
type Trade struct {
	ID          int             `json:"id"`
	Stock       int             `json:"stock"`
	StockSymbol string          `json:"stock_symbol"`
	CompanyName string          `json:"company_name"`
	Action      TradeAction     `json:"action"`
	Quantity    int             `json:"quantity"`
	Notional    decimal.Decimal `json:"notional"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	ExecutedAt  string          `json:"executed_at"`
}
