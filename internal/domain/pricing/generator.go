package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/catalog"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketDataSource supplies the latest market observation for a product.
// Implementations return shared.ErrNotFound when no observation exists on or
// before the requested date.
type MarketDataSource interface {
	LatestPrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*market.MarketPrice, error)
}

// VolatilityRater classifies a product's recent price behaviour
type VolatilityRater interface {
	Classify(ctx context.Context, productID uuid.UUID, asOf time.Time) (market.VolatilityLevel, error)
}

// PriceHistory looks up the customer's price for a product from the previous
// cycle. Returns (nil, nil) when the product has never been priced for this
// customer.
type PriceHistory interface {
	PreviousCustomerPrice(ctx context.Context, customerID, productID uuid.UUID, before time.Time) (*decimal.Decimal, error)
}

// SkipReason explains why a product was excluded from a generated list
type SkipReason string

const (
	SkipReasonNoMarketData SkipReason = "no_market_data"
	SkipReasonDataError    SkipReason = "data_error"
	SkipReasonInactive     SkipReason = "inactive_product"
)

// SkippedProduct records one per-product exclusion, with enough detail for
// an operator-facing report
type SkippedProduct struct {
	ProductID   uuid.UUID
	ProductName string
	Reason      SkipReason
	Err         error
}

// CatalogEntry pairs a product with its resolved category. Category may be
// nil for uncategorized products; they price with zero category adjustment
// and no premium/seasonal flags.
type CatalogEntry struct {
	Product  *catalog.Product
	Category *catalog.Category
}

// GenerationResult is the outcome of one generation run
type GenerationResult struct {
	List    *CustomerPriceList
	Skipped []SkippedProduct
}

// GeneratorConfig holds the policy knobs for list generation
type GeneratorConfig struct {
	// ValidityDays is the length of the effective window for generated
	// lists (e.g. 7 for a weekly cycle). Zero means open-ended lists.
	ValidityDays int
	// MarketDataSourceName labels where the underlying observations came
	// from (e.g. "Tshwane Fresh Produce Market weekly import").
	MarketDataSourceName string
}

// PriceListGenerator orchestrates the creation of a complete price list for
// one customer under one effective rule. It is a domain service: all reads
// go through the injected collaborators and the only state it produces is
// the returned list.
type PriceListGenerator struct {
	marketData MarketDataSource
	volatility VolatilityRater
	history    PriceHistory
	cfg        GeneratorConfig
}

// NewPriceListGenerator creates a new PriceListGenerator
func NewPriceListGenerator(
	marketData MarketDataSource,
	volatility VolatilityRater,
	history PriceHistory,
	cfg GeneratorConfig,
) *PriceListGenerator {
	return &PriceListGenerator{
		marketData: marketData,
		volatility: volatility,
		history:    history,
		cfg:        cfg,
	}
}

// Generate builds one price list for the customer from the eligible product
// set. Products without market data are excluded, not failed; a bad
// observation skips that product only. All items are attached before the
// aggregates are folded, so the stored stats always describe the complete
// item set. A list with zero items is a valid, degenerate outcome.
func (g *PriceListGenerator) Generate(
	ctx context.Context,
	customer *partner.Customer,
	rule *PricingRule,
	products []CatalogEntry,
	asOf time.Time,
	generatedBy *uuid.UUID,
) (*GenerationResult, error) {
	if customer == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if rule == nil {
		return nil, shared.ErrNoEffectiveRule
	}
	if !rule.IsEffective(asOf) {
		return nil, shared.ErrNoEffectiveRule
	}
	if rule.Segment != customer.Segment {
		return nil, shared.NewDomainError("SEGMENT_MISMATCH",
			fmt.Sprintf("Rule targets segment %q but customer is %q", rule.Segment, customer.Segment))
	}

	var effectiveUntil *time.Time
	if g.cfg.ValidityDays > 0 {
		until := asOf.AddDate(0, 0, g.cfg.ValidityDays)
		effectiveUntil = &until
	}

	listName := fmt.Sprintf("%s week of %s", customer.Name, asOf.Format("2006-01-02"))
	list, err := NewCustomerPriceList(
		customer.ID,
		rule.ID,
		listName,
		asOf,
		effectiveUntil,
		asOf,
		g.cfg.MarketDataSourceName,
		generatedBy,
	)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{List: list}

	for _, entry := range products {
		if entry.Product == nil {
			continue
		}
		item, skip := g.buildItem(ctx, customer, rule, entry, list.ID, asOf)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		if err := list.AddItem(item); err != nil {
			result.Skipped = append(result.Skipped, SkippedProduct{
				ProductID:   entry.Product.ID,
				ProductName: entry.Product.Name,
				Reason:      SkipReasonDataError,
				Err:         err,
			})
		}
	}

	list.RecomputeAggregates()

	return result, nil
}

func (g *PriceListGenerator) buildItem(
	ctx context.Context,
	customer *partner.Customer,
	rule *PricingRule,
	entry CatalogEntry,
	listID uuid.UUID,
	asOf time.Time,
) (*CustomerPriceListItem, *SkippedProduct) {
	product := entry.Product

	if !product.IsActive() {
		return nil, &SkippedProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      SkipReasonInactive,
		}
	}

	observation, err := g.marketData.LatestPrice(ctx, product.ID, asOf)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, &SkippedProduct{
				ProductID:   product.ID,
				ProductName: product.Name,
				Reason:      SkipReasonNoMarketData,
			}
		}
		return nil, &SkippedProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      SkipReasonDataError,
			Err:         err,
		}
	}

	level, err := g.volatility.Classify(ctx, product.ID, asOf)
	if err != nil {
		return nil, &SkippedProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      SkipReasonDataError,
			Err:         err,
		}
	}

	categoryName := ""
	isPremium := false
	isSeasonal := false
	if entry.Category != nil {
		categoryName = entry.Category.Name
		isPremium = entry.Category.IsPremium
		isSeasonal = entry.Category.IsSeasonal
	}

	markup, err := rule.CalculateMarkup(categoryName, observation.UnitPriceExclVAT, level)
	if err != nil {
		return nil, &SkippedProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      SkipReasonDataError,
			Err:         err,
		}
	}

	previousPrice, err := g.history.PreviousCustomerPrice(ctx, customer.ID, product.ID, asOf)
	if err != nil {
		return nil, &SkippedProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      SkipReasonDataError,
			Err:         err,
		}
	}

	snapshot := ItemSnapshot{
		ProductID:    product.ID,
		ProductName:  product.Name,
		CategoryName: categoryName,
		Unit:         product.Unit,
		IsVolatile:   level == market.VolatilityVolatile,
		IsSeasonal:   isSeasonal,
		IsPremium:    isPremium,
	}

	item, err := NewCustomerPriceListItem(
		listID,
		snapshot,
		observation.UnitPriceExclVAT,
		observation.UnitPriceInclVAT,
		observation.InvoiceDate,
		markup,
		observation.VATRate(),
		previousPrice,
	)
	if err != nil {
		return nil, &SkippedProduct{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      SkipReasonDataError,
			Err:         err,
		}
	}

	return item, nil
}
