package analytics

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount with the currency's symbol, separators and
// minor units, e.g. "€1,234.56" or "-$5.00". Unknown codes render as
// "12.50 XYZ".
func FormatMoney(amount float64, code string) string {
	value := decimal.NewFromFloat(amount)

	cur := money.GetCurrency(code)
	if cur == nil {
		return value.StringFixed(2) + " " + code
	}

	fraction := int32(cur.Fraction)
	return cur.Formatter().Format(value.Round(fraction).Shift(fraction).IntPart())
}
