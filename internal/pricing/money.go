package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are shown and compared with.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to cents, which is half-up for every
// non-negative amount.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Money is a display amount. It marshals as a fixed two-place string, e.g. "78.13".
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d for display.
func NewMoney(d decimal.Decimal) Money {
	return Money{RoundMoney(d)}
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(MoneyPlaces) + `"`), nil
}

// ParseMoney parses a price given as a decimal string and rejects negatives
// and sub-cent precision.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q is negative", s)
	}
	if !d.Equal(RoundMoney(d)) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimal places", s, MoneyPlaces)
	}
	return d, nil
}

// DisplayLine is a LineResult rounded for presentation.
type DisplayLine struct {
	UnitPrice       Money           `json:"unit_price"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        Money           `json:"subtotal"`
	Discount        Money           `json:"discount"`
	Total           Money           `json:"total"`
}

// Display is a Summary rounded for presentation.
type Display struct {
	Lines          []DisplayLine `json:"lines"`
	Subtotal       Money         `json:"subtotal"`
	Discount       Money         `json:"discount"`
	DeliveryCharge Money         `json:"delivery_charge"`
	Total          Money         `json:"total"`
}

// Display rounds each exact figure independently. The rounded figures may differ
// from Subtotal-Discount+DeliveryCharge by a cent; the exact Summary is authoritative.
func (s Summary) Display() Display {
	d := Display{
		Lines:          make([]DisplayLine, 0, len(s.Lines)),
		Subtotal:       NewMoney(s.Subtotal),
		Discount:       NewMoney(s.Discount),
		DeliveryCharge: NewMoney(s.DeliveryCharge),
		Total:          NewMoney(s.Total),
	}
	for _, l := range s.Lines {
		d.Lines = append(d.Lines, DisplayLine{
			UnitPrice:       NewMoney(l.UnitPrice),
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			Subtotal:        NewMoney(l.Gross),
			Discount:        NewMoney(l.Discount),
			Total:           NewMoney(l.Total),
		})
	}
	return d
}
