package market

import (
	"math"

	"github.com/shopspring/decimal"
)

// VolatilityLevel is a qualitative classification of how much a product's
// market price has fluctuated over a trailing window. The pricing engine
// treats any value other than "volatile" as non-volatile.
type VolatilityLevel string

const (
	VolatilityStable   VolatilityLevel = "stable"
	VolatilityVolatile VolatilityLevel = "volatile"
)

// ClassifyVolatility classifies a series of observed excl-VAT prices by
// coefficient of variation (stddev / mean). A series is volatile when its
// CV exceeds the threshold (a fraction, e.g. 0.15). Fewer than two
// observations cannot show variance and classify as stable.
func ClassifyVolatility(prices []decimal.Decimal, cvThreshold float64) VolatilityLevel {
	if len(prices) < 2 {
		return VolatilityStable
	}

	var sum float64
	values := make([]float64, 0, len(prices))
	for _, p := range prices {
		v := p.InexactFloat64()
		values = append(values, v)
		sum += v
	}

	mean := sum / float64(len(values))
	if mean == 0 {
		return VolatilityStable
	}

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(values)))

	if stddev/mean > cvThreshold {
		return VolatilityVolatile
	}
	return VolatilityStable
}
