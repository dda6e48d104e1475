package domain

import "github.com/shopspring/decimal"

// Commission is the positive residual between the local amount received from a
// client and the true cost of the currency provided:
//
//	max(0, received − realForeign × referenceRate)
//
// Rounded half-up to 2 decimal places so the computed and persisted values
// never drift. The sale engine and the transfer audit step both use this.
func Commission(received, realForeign, referenceRate decimal.Decimal) decimal.Decimal {
	c := received.Sub(realForeign.Mul(referenceRate))
	if c.IsNegative() {
		return decimal.Zero
	}
	return c.Round(2)
}
