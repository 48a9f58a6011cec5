package pricing

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerPriceListItem is one product line within a generated price list.
// Items are created once per generation cycle and immutable thereafter; the
// next cycle produces a new list with new items. Category name, unit and
// market price are snapshots taken at generation time.
type CustomerPriceListItem struct {
	shared.BaseEntity
	PriceListID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_price_list_item_product,priority:1"`
	ProductID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_price_list_item_product,priority:2"`
	ProductName          string           `gorm:"type:varchar(200);not null"`
	CategoryName         string           `gorm:"type:varchar(100)"`
	Unit                 string           `gorm:"type:varchar(20);not null"`
	MarketPriceExclVAT   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	MarketPriceInclVAT   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	MarketPriceDate      time.Time        `gorm:"type:date;not null"`
	MarkupPercentage     decimal.Decimal  `gorm:"type:decimal(8,2);not null"`
	CustomerPriceExclVAT decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CustomerPriceInclVAT decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	PreviousPrice        *decimal.Decimal `gorm:"type:decimal(18,2)"`
	IsVolatile           bool             `gorm:"not null;default:false"`
	IsSeasonal           bool             `gorm:"not null;default:false"`
	IsPremium            bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerPriceListItem) TableName() string {
	return "customer_price_list_items"
}

// ItemSnapshot carries the product-level inputs for one item
type ItemSnapshot struct {
	ProductID    uuid.UUID
	ProductName  string
	CategoryName string
	Unit         string
	IsVolatile   bool
	IsSeasonal   bool
	IsPremium    bool
}

// NewCustomerPriceListItem derives the customer prices for one product line:
//
//	customer_excl = market_excl × (1 + markup/100)
//	customer_incl = customer_excl × (1 + vat_rate)
//
// both rounded to 2 decimal places. The VAT rate is the fraction derived
// from the market observation (e.g. 0.15).
func NewCustomerPriceListItem(
	priceListID uuid.UUID,
	snapshot ItemSnapshot,
	marketPriceExclVAT, marketPriceInclVAT decimal.Decimal,
	marketPriceDate time.Time,
	markupPercentage, vatRate decimal.Decimal,
	previousPrice *decimal.Decimal,
) (*CustomerPriceListItem, error) {
	if marketPriceExclVAT.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidMarketPrice
	}

	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	customerExcl := marketPriceExclVAT.Mul(one.Add(markupPercentage.Div(hundred))).Round(2)
	customerIncl := customerExcl.Mul(one.Add(vatRate)).Round(2)

	return &CustomerPriceListItem{
		BaseEntity:           shared.NewBaseEntity(),
		PriceListID:          priceListID,
		ProductID:            snapshot.ProductID,
		ProductName:          snapshot.ProductName,
		CategoryName:         snapshot.CategoryName,
		Unit:                 snapshot.Unit,
		MarketPriceExclVAT:   marketPriceExclVAT,
		MarketPriceInclVAT:   marketPriceInclVAT,
		MarketPriceDate:      marketPriceDate,
		MarkupPercentage:     markupPercentage,
		CustomerPriceExclVAT: customerExcl,
		CustomerPriceInclVAT: customerIncl,
		PreviousPrice:        previousPrice,
		IsVolatile:           snapshot.IsVolatile,
		IsSeasonal:           snapshot.IsSeasonal,
		IsPremium:            snapshot.IsPremium,
	}, nil
}

// MarginAmount returns the absolute margin per unit, excl VAT
func (i *CustomerPriceListItem) MarginAmount() decimal.Decimal {
	return i.CustomerPriceExclVAT.Sub(i.MarketPriceExclVAT)
}

// PriceChange classifies the movement against the previous cycle's price
func (i *CustomerPriceListItem) PriceChange() PriceChange {
	return ClassifyPriceChange(i.CustomerPriceInclVAT, i.PreviousPrice)
}

// PriceChangePercentage returns the percentage delta against the previous
// price, or zero when no previous price is recorded
func (i *CustomerPriceListItem) PriceChangePercentage() decimal.Decimal {
	return i.PriceChange().Percentage
}

// IsPriceIncrease reports whether the customer price went up this cycle
func (i *CustomerPriceListItem) IsPriceIncrease() bool {
	return i.PriceChange().IsIncrease()
}

// IsSignificantChange reports whether the change crosses the configured
// significance threshold (percentage points)
func (i *CustomerPriceListItem) IsSignificantChange(thresholdPercent decimal.Decimal) bool {
	return i.PriceChange().IsSignificant(thresholdPercent)
}
