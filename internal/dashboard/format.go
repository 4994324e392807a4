package dashboard

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-trader-dashboard/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DisplayLayout mirrors the en-US locale date-time rendering
	DisplayLayout = "1/2/2006, 3:04:05 PM"
	invalidDate   = "Invalid Date"
)

var (
	enUS    = message.NewPrinter(language.AmericanEnglish)
	hundred = decimal.NewFromInt(100)

	// zoned layouts carry their own offset; local ones are read in the display location
	zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700", "2006-01-02T15:04Z07:00"}
	localLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999", "2006-01-02T15:04"}
)

// FormatCurrency renders a US dollar amount with grouping and two fraction digits, e.g. "-$1,234.50"
// Negative amounts that round to zero keep their sign: -0.001 -> "-$0.00".
func FormatCurrency(d decimal.Decimal) string {
	s := "$" + fixed2(d.Round(2).Abs())
	if d.IsNegative() {
		return "-" + s
	}
	return s
}

// FormatPercent takes a value in percentage points, converts it to a fraction
// and renders it as a percentage with two fraction digits: 2.35 -> "2.35%".
func FormatPercent(points decimal.Decimal) string {
	fraction := points.Div(hundred)
	pct := fraction.Mul(hundred)
	s := fixed2(pct.Round(2).Abs()) + "%"
	if pct.IsNegative() {
		return "-" + s
	}
	return s
}

// ParseTimestamp reads an ISO-8601 timestamp. Values without an offset are
// interpreted in loc; date-only values are UTC midnight.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatTime renders t in loc using DisplayLayout
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}

// FormatTimestamp parses and renders a raw timestamp, or "Invalid Date"
func FormatTimestamp(s string, loc *time.Location) string {
	t, ok := ParseTimestamp(s, loc)
	if !ok {
		return invalidDate
	}
	return FormatTime(t, loc)
}

// ChangeClass returns the CSS modifier for a signed change
func ChangeClass(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "change-positive"
	case -1:
		return "change-negative"
	default:
		return ""
	}
}

// ProfitClass returns the class list for the realized profit card value
func ProfitClass(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "summary-card__value summary-card__value--positive"
	case -1:
		return "summary-card__value summary-card__value--negative"
	default:
		return "summary-card__value"
	}
}

// PillClass returns the class list for a trade action pill
func PillClass(action models.TradeAction) string {
	switch {
	case action.IsBuy():
		return "pill pill--buy"
	case action.IsSell():
		return "pill pill--sell"
	default:
		return "pill"
	}
}

// fixed2 formats a non-negative value already rounded to two places
func fixed2(d decimal.Decimal) string {
	f := d.InexactFloat64()
	return enUS.Sprintf("%v", number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
