// Package split holds the pure share arithmetic for shared expenses.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EqualShares divides amount into n shares of two-decimal precision.
// The shares always sum to amount exactly: the remainder after rounding
// down to cents is distributed one cent at a time onto the last shares,
// so 100.00 over 3 yields 33.33, 33.33, 33.34.
func EqualShares(amount decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("must split between at least one participant")
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	base := amount.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}

	// Distribute the leftover cents from the back.
	cent := decimal.New(1, -2)
	remainder := amount.Sub(base.Mul(decimal.NewFromInt(int64(n))))
	for i := n - 1; remainder.Sign() > 0 && i >= 0; i-- {
		shares[i] = shares[i].Add(cent)
		remainder = remainder.Sub(cent)
	}

	return shares, nil
}

// Sum adds up a list of shares.
func Sum(shares []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s)
	}
	return total
}

// ValidateShares checks that every share is positive and that the shares
// sum to amount exactly. No rounding slack is allowed: 33.33 three times
// does not cover 100.00.
func ValidateShares(amount decimal.Decimal, shares []decimal.Decimal) error {
	if len(shares) == 0 {
		return fmt.Errorf("at least one participant is required")
	}
	for i, s := range shares {
		if s.Sign() <= 0 {
			return fmt.Errorf("share %d must be positive", i+1)
		}
	}
	if sum := Sum(shares); !sum.Equal(amount) {
		return fmt.Errorf("participant shares sum to %s, expense amount is %s",
			sum.StringFixed(2), amount.StringFixed(2))
	}
	return nil
}
