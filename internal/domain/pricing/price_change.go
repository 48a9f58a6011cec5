package pricing

import (
	"github.com/shopspring/decimal"
)

// PriceChange describes how a newly computed customer price moved relative
// to the previous cycle. It is undefined when there is no previous price to
// compare against (a product's first appearance on a list).
type PriceChange struct {
	Percentage decimal.Decimal
	Defined    bool
}

// ClassifyPriceChange compares a new incl-VAT customer price against the
// previous cycle's price. Stateless; the percentage is quantized to 2
// decimal places.
func ClassifyPriceChange(current decimal.Decimal, previous *decimal.Decimal) PriceChange {
	if previous == nil || previous.LessThanOrEqual(decimal.Zero) {
		return PriceChange{Percentage: decimal.Zero, Defined: false}
	}

	delta := current.Sub(*previous)
	percentage := delta.Div(*previous).Mul(decimal.NewFromInt(100)).Round(2)

	return PriceChange{Percentage: percentage, Defined: true}
}

// IsIncrease reports whether the price moved up
func (pc PriceChange) IsIncrease() bool {
	return pc.Defined && pc.Percentage.IsPositive()
}

// IsDecrease reports whether the price moved down
func (pc PriceChange) IsDecrease() bool {
	return pc.Defined && pc.Percentage.IsNegative()
}

// IsSignificant reports whether the absolute change exceeds the threshold
// (in percentage points, e.g. 10 for ±10%). The threshold comes from
// configuration, never from a hardcoded constant.
func (pc PriceChange) IsSignificant(thresholdPercent decimal.Decimal) bool {
	return pc.Defined && pc.Percentage.Abs().GreaterThan(thresholdPercent)
}
