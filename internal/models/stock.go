package models

import "github.com/shopspring/decimal"

// Stock is a point-in-time watchlist snapshot as served by GET /stocks/.
// LastUpdated is kept as sent so unparseable timestamps can be skipped at
// display time instead of failing the whole list.
type Stock struct {
	ID                 int             `json:"id"`
	Symbol             string          `json:"symbol"`
	CompanyName        string          `json:"company_name"`
	LastPrice          decimal.Decimal `json:"last_price"`
	DailyChangePercent decimal.Decimal `json:"daily_change_percent"` // percentage points, 2.35 == 2.35%
	LastUpdated        string          `json:"last_updated"`
}
