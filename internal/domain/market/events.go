package market

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeMarketPrice = "MarketPrice"

// Event type constants
const EventTypeMarketPriceRecorded = "MarketPriceRecorded"

// MarketPriceRecordedEvent is published when a new observation is recorded.
// Cache layers listen for this to invalidate the latest-price entry.
type MarketPriceRecordedEvent struct {
	shared.BaseDomainEvent
	MarketPriceID    uuid.UUID       `json:"market_price_id"`
	SupplierName     string          `json:"supplier_name"`
	ProductName      string          `json:"product_name"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	UnitPriceExclVAT decimal.Decimal `json:"unit_price_excl_vat"`
}

// NewMarketPriceRecordedEvent creates a new MarketPriceRecordedEvent
func NewMarketPriceRecordedEvent(price *MarketPrice) *MarketPriceRecordedEvent {
	return &MarketPriceRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeMarketPriceRecorded, AggregateTypeMarketPrice, price.ID),
		MarketPriceID:    price.ID,
		SupplierName:     price.SupplierName,
		ProductName:      price.ProductName,
		ProductID:        price.ProductID,
		InvoiceDate:      price.InvoiceDate,
		UnitPriceExclVAT: price.UnitPriceExclVAT,
	}
}
