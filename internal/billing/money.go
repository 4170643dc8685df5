package billing

import (
	"github.com/shopspring/decimal"
)

// RoundMoney rounds a monetary amount to 2 decimal places, half away from
// zero. Every monetary result is rounded at the point of computation, never
// only at display time, so that the same inputs always reproduce the same
// persisted figures.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MaxZero clamps a monetary amount at zero from below.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ClampAmount clamps d into [min, max].
func ClampAmount(d, min, max decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		return min
	}
	if d.GreaterThan(max) {
		return max
	}
	return d
}
