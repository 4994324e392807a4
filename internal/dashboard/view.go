package dashboard

import (
	"strconv"
	"time"

	"github.com/trogers1052/stock-trader-dashboard/internal/models"
	"github.com/trogers1052/stock-trader-dashboard/internal/query"
)

// ErrorMessage is the only failure text users see, whichever query failed
const ErrorMessage = "Unable to load dashboard data. Check that the Django API is running."

// View is everything the dashboard page renders
type View struct {
	Loading       bool                     `json:"loading"`
	Err           error                    `json:"-"`
	ErrorMessage  string                   `json:"error,omitempty"`
	LastUpdated   string                   `json:"last_updated,omitempty"`
	LastUpdatedAt *time.Time               `json:"last_updated_at,omitempty"`
	Summary       *models.DashboardSummary `json:"summary,omitempty"`
	Cards         []SummaryCard            `json:"cards,omitempty"`
	Stocks        []StockRow               `json:"stocks"`
	Trades        []TradeRow               `json:"trades"`
	Queries       map[string]string        `json:"queries"`

	ShowStocksEmpty bool `json:"show_stocks_empty"`
	ShowTradesEmpty bool `json:"show_trades_empty"`

	// BasePath prefixes asset and API links in the page
	BasePath string `json:"-"`
}

// SummaryCard is one tile of the summary grid
type SummaryCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Class string `json:"class"`
}

// StockRow is a formatted watchlist row
type StockRow struct {
	ID          int    `json:"id"`
	Symbol      string `json:"symbol"`
	Company     string `json:"company"`
	Price       string `json:"price"`
	Change      string `json:"change"`
	ChangeClass string `json:"change_class"`
}

// TradeRow is a formatted trade-history row
type TradeRow struct {
	ID        int    `json:"id"`
	Time      string `json:"time"`
	Symbol    string `json:"symbol"`
	Action    string `json:"action"`
	PillClass string `json:"pill_class"`
	Notional  string `json:"notional"`
	Status    string `json:"status"`
}

// AnyPending is true iff at least one query has not settled
func AnyPending(pending ...bool) bool {
	for _, p := range pending {
		if p {
			return true
		}
	}
	return false
}

// FirstError returns the first non-nil error in argument order
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// LastUpdated returns the latest parseable LastUpdated among stocks.
// Unparseable values are skipped; ok is false when nothing parses.
func LastUpdated(stocks []models.Stock, loc *time.Location) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, s := range stocks {
		t, ok := ParseTimestamp(s.LastUpdated, loc)
		if !ok {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// BuildView derives the page state from the three query results.
// The error check order is stocks, trades, summary.
func BuildView(
	stocks query.Result[[]models.Stock],
	trades query.Result[[]models.Trade],
	summary query.Result[*models.DashboardSummary],
	loc *time.Location,
) View {
	if loc == nil {
		loc = time.Local
	}

	v := View{
		Loading: AnyPending(stocks.IsPending(), trades.IsPending(), summary.IsPending()),
		Err:     FirstError(stocks.Err, trades.Err, summary.Err),
		Stocks:  make([]StockRow, 0, len(stocks.Data)),
		Trades:  make([]TradeRow, 0, len(trades.Data)),
		Queries: map[string]string{
			stocks.Key:  stocks.Status.String(),
			trades.Key:  trades.Status.String(),
			summary.Key: summary.Status.String(),
		},
	}
	if v.Err != nil {
		v.ErrorMessage = ErrorMessage
	}

	if t, ok := LastUpdated(stocks.Data, loc); ok {
		v.LastUpdatedAt = &t
		v.LastUpdated = FormatTime(t, loc)
	}

	if summary.HasData && summary.Data != nil {
		s := *summary.Data
		v.Summary = &s
		v.Cards = summaryCards(s)
	}

	for _, s := range stocks.Data {
		v.Stocks = append(v.Stocks, StockRow{
			ID:          s.ID,
			Symbol:      s.Symbol,
			Company:     s.CompanyName,
			Price:       FormatCurrency(s.LastPrice),
			Change:      FormatPercent(s.DailyChangePercent),
			ChangeClass: ChangeClass(s.DailyChangePercent),
		})
	}

	for _, t := range trades.Data {
		v.Trades = append(v.Trades, TradeRow{
			ID:        t.ID,
			Time:      FormatTimestamp(t.ExecutedAt, loc),
			Symbol:    t.StockSymbol,
			Action:    string(t.Action),
			PillClass: PillClass(t.Action),
			Notional:  FormatCurrency(t.Notional),
			Status:    t.Status,
		})
	}

	v.ShowStocksEmpty = len(v.Stocks) == 0 && !v.Loading
	v.ShowTradesEmpty = len(v.Trades) == 0 && !v.Loading
	return v
}

func summaryCards(s models.DashboardSummary) []SummaryCard {
	const plain = "summary-card__value"
	return []SummaryCard{
		{Title: "Total symbols tracked", Value: strconv.Itoa(s.TotalSymbols), Class: plain},
		{Title: "Open positions", Value: strconv.Itoa(s.OpenPositions), Class: plain},
		{Title: "Today's buys", Value: strconv.Itoa(s.TodaysBuys), Class: plain},
		{Title: "Today's sells", Value: strconv.Itoa(s.TodaysSells), Class: plain},
		{Title: "Total capital deployed", Value: FormatCurrency(s.TotalNotional), Class: plain},
		{Title: "Realized profit", Value: FormatCurrency(s.RealizedProfit), Class: ProfitClass(s.RealizedProfit)},
	}
}
