package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var centsPerUnit = decimal.NewFromInt(100)

// CentsToDecimal renders an integer cent amount as decimal currency units
// for the wire format ("1099" cents -> 10.99).
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}

// DecimalToCents converts a wire-format currency amount to integer cents.
// Amounts with sub-cent precision or a negative sign are rejected; prices
// carried by clients are snapshots and must already be cent-aligned.
func DecimalToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount %s cannot be negative", amount)
	}
	cents := amount.Mul(centsPerUnit)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", amount)
	}
	return cents.IntPart(), nil
}
