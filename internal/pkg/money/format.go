// internal/pkg/money/format.go
package money

import (
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every displayed amount
const CurrencySymbol = "€"

// Format renders integer cents as a two-decimal amount, e.g. 250 -> "2.50".
// The division happens on a decimal, never on a float.
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// FormatEUR renders cents with the currency symbol, e.g. 250 -> "€2.50"
func FormatEUR(cents int64) string {
	return CurrencySymbol + Format(cents)
}

// Times multiplies a unit price by a quantity in cents
func Times(unitCents int64, quantity int) int64 {
	return unitCents * int64(quantity)
}
