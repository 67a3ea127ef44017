// Package roundup implements the round-up function (C1): mapping a
// monetary amount to its positive round-up to the next whole unit.
package roundup

import (
	"github.com/rounduppay/core/pkg/money"
)

// Compute returns the round-up for amount:
//   - ceil(amount) - amount, when amount has a fractional part
//   - 1.00, when amount is a positive whole number
//   - 0.00, when amount <= 0
func Compute(amount money.Cents) money.Cents {
	if amount <= 0 {
		return money.Zero
	}
	if amount.HasFraction() {
		return amount.CeilToWhole().Sub(amount)
	}
	return 100 // one whole unit, in cents
}
