package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
)

// repositoryMarketData adapts the market price repository to the generator's
// MarketDataSource port.
type repositoryMarketData struct {
	marketRepo market.MarketPriceRepository
}

// NewRepositoryMarketData creates a MarketDataSource backed by the
// observation store
func NewRepositoryMarketData(marketRepo market.MarketPriceRepository) pricing.MarketDataSource {
	return &repositoryMarketData{marketRepo: marketRepo}
}

func (d *repositoryMarketData) LatestPrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*market.MarketPrice, error) {
	return d.marketRepo.FindLatestForProduct(ctx, productID, asOf)
}

// historyVolatilityRater classifies volatility from the trailing observation
// window by coefficient of variation.
type historyVolatilityRater struct {
	marketRepo  market.MarketPriceRepository
	windowDays  int
	cvThreshold float64
}

// NewHistoryVolatilityRater creates a VolatilityRater over the observation
// store. windowDays is the trailing window length; cvThreshold is the
// coefficient-of-variation fraction above which a product is volatile.
func NewHistoryVolatilityRater(marketRepo market.MarketPriceRepository, windowDays int, cvThreshold float64) pricing.VolatilityRater {
	return &historyVolatilityRater{
		marketRepo:  marketRepo,
		windowDays:  windowDays,
		cvThreshold: cvThreshold,
	}
}

func (r *historyVolatilityRater) Classify(ctx context.Context, productID uuid.UUID, asOf time.Time) (market.VolatilityLevel, error) {
	from := asOf.AddDate(0, 0, -r.windowDays)
	history, err := r.marketRepo.FindHistoryForProduct(ctx, productID, from, asOf)
	if err != nil {
		return "", err
	}

	prices := make([]decimal.Decimal, 0, len(history))
	for i := range history {
		prices = append(prices, history[i].UnitPriceExclVAT)
	}

	return market.ClassifyVolatility(prices, r.cvThreshold), nil
}

// listPriceHistory looks up previous cycle prices from stored price lists
type listPriceHistory struct {
	listRepo pricing.CustomerPriceListRepository
}

// NewListPriceHistory creates a PriceHistory backed by the price list store
func NewListPriceHistory(listRepo pricing.CustomerPriceListRepository) pricing.PriceHistory {
	return &listPriceHistory{listRepo: listRepo}
}

func (h *listPriceHistory) PreviousCustomerPrice(ctx context.Context, customerID, productID uuid.UUID, before time.Time) (*decimal.Decimal, error) {
	return h.listRepo.FindPreviousItemPrice(ctx, customerID, productID, before)
}
