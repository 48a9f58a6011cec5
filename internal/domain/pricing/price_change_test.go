package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func TestClassifyPriceChange(t *testing.T) {
	threshold := decimal.NewFromInt(10)

	t.Run("moderate increase below threshold", func(t *testing.T) {
		// (25.88 - 24.00) / 24.00 * 100 = 7.83
		change := ClassifyPriceChange(decimal.NewFromFloat(25.88), decimalPtr(24.00))

		assert.True(t, change.Defined)
		assert.Equal(t, "7.83", change.Percentage.StringFixed(2))
		assert.True(t, change.IsIncrease())
		assert.False(t, change.IsDecrease())
		assert.False(t, change.IsSignificant(threshold))
	})

	t.Run("significant increase", func(t *testing.T) {
		change := ClassifyPriceChange(decimal.NewFromFloat(28.00), decimalPtr(24.00))

		assert.Equal(t, "16.67", change.Percentage.StringFixed(2))
		assert.True(t, change.IsSignificant(threshold))
	})

	t.Run("significant decrease", func(t *testing.T) {
		change := ClassifyPriceChange(decimal.NewFromFloat(20.00), decimalPtr(24.00))

		assert.Equal(t, "-16.67", change.Percentage.StringFixed(2))
		assert.True(t, change.IsDecrease())
		assert.False(t, change.IsIncrease())
		assert.True(t, change.IsSignificant(threshold))
	})

	t.Run("exactly at threshold is not significant", func(t *testing.T) {
		change := ClassifyPriceChange(decimal.NewFromFloat(26.40), decimalPtr(24.00))

		assert.Equal(t, "10.00", change.Percentage.StringFixed(2))
		assert.False(t, change.IsSignificant(threshold))
	})

	t.Run("undefined without previous price", func(t *testing.T) {
		change := ClassifyPriceChange(decimal.NewFromFloat(25.88), nil)

		assert.False(t, change.Defined)
		assert.True(t, change.Percentage.IsZero())
		assert.False(t, change.IsIncrease())
		assert.False(t, change.IsSignificant(threshold))
	})

	t.Run("undefined with zero previous price", func(t *testing.T) {
		change := ClassifyPriceChange(decimal.NewFromFloat(25.88), decimalPtr(0))

		assert.False(t, change.Defined)
	})

	t.Run("unchanged price is neither increase nor decrease", func(t *testing.T) {
		change := ClassifyPriceChange(decimal.NewFromFloat(24.00), decimalPtr(24.00))

		assert.True(t, change.Defined)
		assert.True(t, change.Percentage.IsZero())
		assert.False(t, change.IsIncrease())
		assert.False(t, change.IsDecrease())
	})
}
