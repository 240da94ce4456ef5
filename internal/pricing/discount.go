package pricing

import "github.com/shopspring/decimal"

const (
	// TierSize is the number of units per discount tier.
	TierSize int64 = 500
)

// TierPercent is the discount added by each completed tier.
var TierPercent = decimal.RequireFromString("2.5")

// DiscountPercent returns floor(q/TierSize) * TierPercent. It is applied per line
// on that line's own quantity and has no upper bound.
func DiscountPercent(q int64) decimal.Decimal {
	if q < TierSize {
		return decimal.Zero
	}
	return decimal.NewFromInt(q / TierSize).Mul(TierPercent)
}
