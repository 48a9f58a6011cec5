package market

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketPrice is an observed upstream price point: one supplier invoice line
// for one product on one date. Records are immutable once created; the
// pricing engine only ever reads the latest observation per product.
//
// The VAT percentage is always derived from the stored amounts, never stored
// independently, so the excl/VAT/incl split cannot drift apart.
type MarketPrice struct {
	shared.BaseAggregateRoot
	SupplierName     string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_market_price_observation,priority:1"`
	InvoiceDate      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_market_price_observation,priority:2;index"`
	ProductName      string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_market_price_observation,priority:3"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index"` // Set once the free-text name is matched to a catalog product
	UnitPriceExclVAT decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VATAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPriceInclVAT decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityUnit     string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (MarketPrice) TableName() string {
	return "market_prices"
}

// NewMarketPrice creates a new market price observation.
// The incl-VAT price is computed, not supplied.
func NewMarketPrice(
	supplierName string,
	invoiceDate time.Time,
	productName string,
	unitPriceExclVAT, vatAmount decimal.Decimal,
	quantityUnit string,
) (*MarketPrice, error) {
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Invoice date is required")
	}
	if unitPriceExclVAT.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidMarketPrice
	}
	if vatAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VAT", "VAT amount cannot be negative")
	}
	if quantityUnit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Quantity unit cannot be empty")
	}

	price := &MarketPrice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierName:      supplierName,
		InvoiceDate:       invoiceDate,
		ProductName:       productName,
		UnitPriceExclVAT:  unitPriceExclVAT,
		VATAmount:         vatAmount,
		UnitPriceInclVAT:  unitPriceExclVAT.Add(vatAmount),
		QuantityUnit:      quantityUnit,
	}

	price.AddDomainEvent(NewMarketPriceRecordedEvent(price))

	return price, nil
}

// MatchProduct links this observation to a catalog product.
// Matching happens once, during ingestion; it is the only permitted write.
func (m *MarketPrice) MatchProduct(productID uuid.UUID) error {
	if m.ProductID != nil {
		return shared.NewDomainError("ALREADY_MATCHED", "Market price is already matched to a product")
	}

	m.ProductID = &productID
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// VATRate returns the VAT fraction (e.g. 0.15 for 15%)
func (m *MarketPrice) VATRate() decimal.Decimal {
	if m.UnitPriceExclVAT.IsZero() {
		return decimal.Zero
	}
	return m.VATAmount.Div(m.UnitPriceExclVAT)
}

// VATPercentage returns the derived VAT percentage rounded to 2 places
func (m *MarketPrice) VATPercentage() decimal.Decimal {
	return m.VATRate().Mul(decimal.NewFromInt(100)).Round(2)
}
