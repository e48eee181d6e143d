// Package money holds the balance arithmetic shared by the ledger and the
// projection. All persisted balances pass through Round2.
package money

import "github.com/shopspring/decimal"

// Zero is the starting balance.
var Zero = decimal.Zero

// Round2 rounds to cents, halves away from zero (0.625 -> 0.63).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Apply returns the balance after one day's outcome: an exercised day adds
// the reward rate, a missed day halves the balance.
func Apply(prev decimal.Decimal, exercised bool, rate decimal.Decimal) decimal.Decimal {
	if exercised {
		return Round2(prev.Add(rate))
	}
	return Round2(prev.Div(decimal.NewFromInt(2)))
}

// FreezeCost is what using one freeze costs at the given reward rate.
func FreezeCost(rate decimal.Decimal) decimal.Decimal {
	return Round2(rate.Mul(decimal.NewFromInt(2)))
}

// Floor0 clamps negative values to zero.
func Floor0(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Parse reads a user-entered amount like "12.5" or "$12.50".
func Parse(s string) (decimal.Decimal, error) {
	if len(s) > 0 && s[0] == '$' {
		s = s[1:]
	}
	return decimal.NewFromString(s)
}
