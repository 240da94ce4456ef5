package pricing

import "math"

const (
	// MOQ is the minimum number of units a line may be ordered in.
	MOQ int64 = 250
	// Step is the increment above MOQ that valid quantities move in.
	Step int64 = 50
	// MaxLineQuantity is the largest quantity a cart or order line accepts.
	// It sits on a Step boundary. Request validators use the literal 1000000.
	MaxLineQuantity int64 = 1_000_000
)

// maxValidQuantity is the largest valid quantity representable in int64.
const maxValidQuantity = MOQ + ((math.MaxInt64-MOQ)/Step)*Step

// IsValidQuantity reports whether q is at least MOQ and sits on a Step boundary.
func IsValidQuantity(q int64) bool {
	return q >= MOQ && (q-MOQ)%Step == 0
}

// RoundToValidQuantity snaps q to the nearest valid quantity. Anything below MOQ
// (zero and negatives included) becomes MOQ; a remainder of exactly Step/2 rounds up.
func RoundToValidQuantity(q int64) int64 {
	if q < MOQ {
		return MOQ
	}
	remainder := (q - MOQ) % Step
	switch {
	case remainder == 0:
		return q
	case remainder < Step/2:
		return q - remainder
	case q > maxValidQuantity:
		// rounding up would overflow
		return maxValidQuantity
	default:
		return q + (Step - remainder)
	}
}
