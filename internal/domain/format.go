package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders a dollar amount with thousands separators and two
// decimal places, e.g. "$1,234.50".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("$")
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(",")
		}
		b.WriteRune(c)
	}
	b.WriteString(".")
	b.WriteString(frac)
	return b.String()
}

// FormatQuantity renders a share count with up to four decimal places,
// trailing zeros trimmed.
func FormatQuantity(d decimal.Decimal) string {
	s := d.Round(4).String()
	return s
}

// Summary is the one-line rendering of a holding used by portfolio views.
// currentValue may be nil when the quote lookup failed.
func (h Holding) Summary(currentValue *decimal.Decimal) string {
	value := "price unavailable"
	if currentValue != nil {
		value = FormatMoney(*currentValue)
	}
	return fmt.Sprintf("%s: %s shares, cost basis %s (avg %s), value %s",
		h.Symbol, FormatQuantity(h.Quantity), FormatMoney(h.CostBasis), FormatMoney(h.AvgPrice()), value)
}
