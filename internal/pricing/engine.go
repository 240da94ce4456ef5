package pricing

import "github.com/shopspring/decimal"

// Line is a single priced line: a unit price and the number of units.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// LineResult carries the exact per-line figures.
type LineResult struct {
	UnitPrice       decimal.Decimal
	Quantity        int64
	DiscountPercent decimal.Decimal
	Gross           decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// Summary aggregates computed pricing components. All amounts are exact;
// Display rounds them for presentation.
type Summary struct {
	Lines          []LineResult
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	DeliveryCharge decimal.Decimal
	Total          decimal.Decimal
}

// PriceLine computes the discount and total of one line.
func PriceLine(l Line) LineResult {
	pct := DiscountPercent(l.Quantity)
	gross := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
	// pct is a percentage, Shift(-2) divides by 100 without losing digits
	discount := gross.Mul(pct).Shift(-2)
	return LineResult{
		UnitPrice:       l.UnitPrice,
		Quantity:        l.Quantity,
		DiscountPercent: pct,
		Gross:           gross,
		Discount:        discount,
		Total:           gross.Sub(discount),
	}
}

// Aggregate prices every line and combines them with the delivery charge.
// Total always equals Subtotal - Discount + DeliveryCharge exactly.
func Aggregate(lines []Line, deliveryCharge decimal.Decimal) Summary {
	s := Summary{
		Lines:          make([]LineResult, 0, len(lines)),
		Subtotal:       decimal.Zero,
		Discount:       decimal.Zero,
		DeliveryCharge: deliveryCharge,
	}
	for _, l := range lines {
		res := PriceLine(l)
		s.Lines = append(s.Lines, res)
		s.Subtotal = s.Subtotal.Add(res.Gross)
		s.Discount = s.Discount.Add(res.Discount)
	}
	s.Total = s.Subtotal.Sub(s.Discount).Add(deliveryCharge)
	return s
}
