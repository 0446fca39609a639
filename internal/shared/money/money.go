// Package money holds the fixed-point helpers shared by carts, orders and wallets.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fraction digits carried by every stored amount.
const Places int32 = 2

// Epsilon is the tolerance used when comparing a cached amount with its recomputation.
var Epsilon = decimal.New(1, -Places)

// Round normalises an amount to two fraction digits.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// Equal reports whether two amounts differ by less than Epsilon.
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}

// Parse reads a decimal string and rejects values with more than two fraction digits.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if !amount.Equal(Round(amount)) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d fraction digits", raw, Places)
	}
	return amount, nil
}

// Sum adds amounts and rounds the result.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round(total)
}
