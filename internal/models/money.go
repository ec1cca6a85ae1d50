package models

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits every amount is kept at
const MoneyScale = 2

// IsValidAmount reports whether d is a positive amount with at most two fraction digits
func IsValidAmount(d decimal.Decimal) bool {
	if !d.IsPositive() {
		return false
	}
	return d.Equal(d.Truncate(MoneyScale))
}

// FormatMoney renders an amount as a decimal string with two fraction digits
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
