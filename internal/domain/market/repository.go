package market

import (
	"context"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// MarketPriceRepository defines the interface for market price persistence
type MarketPriceRepository interface {
	// FindByID finds a market price by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MarketPrice, error)

	// FindLatestForProduct returns the most recent observation for a product
	// with invoice_date <= asOf. Returns shared.ErrNotFound when the product
	// has no observations in range.
	FindLatestForProduct(ctx context.Context, productID uuid.UUID, asOf time.Time) (*MarketPrice, error)

	// FindHistoryForProduct returns observations for a product within
	// [from, to], ordered ascending by invoice date.
	FindHistoryForProduct(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]MarketPrice, error)

	// ExistsObservation checks whether an observation already exists for the
	// supplier+date+product triple.
	ExistsObservation(ctx context.Context, supplierName string, invoiceDate time.Time, productName string) (bool, error)

	// FindAll finds all market prices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]MarketPrice, error)

	// Save creates a market price observation
	Save(ctx context.Context, price *MarketPrice) error

	// Count counts observations matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
