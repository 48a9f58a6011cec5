package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
)

// RecordObservationRequest represents one incoming market price line,
// typically from a weekly supplier invoice import
type RecordObservationRequest struct {
	SupplierName     string          `json:"supplier_name" binding:"required,min=1,max=200"`
	InvoiceDate      time.Time       `json:"invoice_date" binding:"required"`
	ProductName      string          `json:"product_name" binding:"required,min=1,max=200"`
	ProductID        *uuid.UUID      `json:"product_id"`
	UnitPriceExclVAT decimal.Decimal `json:"unit_price_excl_vat" binding:"required"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	QuantityUnit     string          `json:"quantity_unit" binding:"required,max=20"`
}

// ObservationResponse represents a market price observation in API responses
type ObservationResponse struct {
	ID               uuid.UUID       `json:"id"`
	SupplierName     string          `json:"supplier_name"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	ProductName      string          `json:"product_name"`
	ProductID        *uuid.UUID      `json:"product_id"`
	UnitPriceExclVAT decimal.Decimal `json:"unit_price_excl_vat"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	UnitPriceInclVAT decimal.Decimal `json:"unit_price_incl_vat"`
	VATPercentage    decimal.Decimal `json:"vat_percentage"`
	QuantityUnit     string          `json:"quantity_unit"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ImportResult reports the outcome of a bulk observation import
type ImportResult struct {
	Recorded   []ObservationResponse `json:"recorded"`
	Duplicates int                   `json:"duplicates"`
	Failures   []ImportFailure       `json:"failures,omitempty"`
}

// ImportFailure records one observation line that could not be recorded
type ImportFailure struct {
	ProductName string `json:"product_name"`
	Error       string `json:"error"`
}

// VolatilityResponse reports a product's volatility classification
type VolatilityResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	Level        string    `json:"level"`
	WindowDays   int       `json:"window_days"`
	Observations int       `json:"observations"`
	AsOf         time.Time `json:"as_of"`
}

// ObservationListFilter represents filter options for observation listing
type ObservationListFilter struct {
	Search   string `form:"search"`
	Supplier string `form:"supplier"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToObservationResponse converts a domain observation to a response DTO
func ToObservationResponse(price *market.MarketPrice) ObservationResponse {
	return ObservationResponse{
		ID:               price.ID,
		SupplierName:     price.SupplierName,
		InvoiceDate:      price.InvoiceDate,
		ProductName:      price.ProductName,
		ProductID:        price.ProductID,
		UnitPriceExclVAT: price.UnitPriceExclVAT,
		VATAmount:        price.VATAmount,
		UnitPriceInclVAT: price.UnitPriceInclVAT,
		VATPercentage:    price.VATPercentage(),
		QuantityUnit:     price.QuantityUnit,
		CreatedAt:        price.CreatedAt,
	}
}

// ToObservationResponses converts a slice of observations to response DTOs
func ToObservationResponses(prices []market.MarketPrice) []ObservationResponse {
	responses := make([]ObservationResponse, 0, len(prices))
	for i := range prices {
		responses = append(responses, ToObservationResponse(&prices[i]))
	}
	return responses
}
