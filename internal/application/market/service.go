package market

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/catalog"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// LatestPriceCache caches the latest observation per product. Implementations
// must treat a cache miss and a cache error the same way: the caller falls
// back to the repository.
type LatestPriceCache interface {
	Get(ctx context.Context, productID uuid.UUID) (*market.MarketPrice, bool)
	Set(ctx context.Context, productID uuid.UUID, price *market.MarketPrice)
	Invalidate(ctx context.Context, productID uuid.UUID)
}

// ServiceConfig holds the market data policy knobs
type ServiceConfig struct {
	// VolatilityWindowDays is the trailing window used for volatility
	// classification.
	VolatilityWindowDays int
	// VolatilityCVThreshold is the coefficient-of-variation fraction above
	// which a product classifies as volatile.
	VolatilityCVThreshold float64
}

// Service handles market price ingestion and lookups
type Service struct {
	marketRepo   market.MarketPriceRepository
	productRepo  catalog.ProductRepository
	supplierRepo partner.SupplierRepository
	cache        LatestPriceCache
	cfg          ServiceConfig
}

// NewService creates a new market data Service. cache may be nil, in which
// case every lookup goes to the repository.
func NewService(
	marketRepo market.MarketPriceRepository,
	productRepo catalog.ProductRepository,
	supplierRepo partner.SupplierRepository,
	cache LatestPriceCache,
	cfg ServiceConfig,
) *Service {
	if cfg.VolatilityWindowDays <= 0 {
		cfg.VolatilityWindowDays = 30
	}
	if cfg.VolatilityCVThreshold <= 0 {
		cfg.VolatilityCVThreshold = 0.15
	}
	return &Service{
		marketRepo:   marketRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		cache:        cache,
		cfg:          cfg,
	}
}

// RecordObservation records one market price line. Re-importing the same
// supplier+date+product line is a no-op duplicate, not an error, so weekly
// imports can be retried safely.
func (s *Service) RecordObservation(ctx context.Context, req RecordObservationRequest) (*ObservationResponse, bool, error) {
	exists, err := s.marketRepo.ExistsObservation(ctx, req.SupplierName, req.InvoiceDate, req.ProductName)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, true, nil
	}

	observation, err := market.NewMarketPrice(
		req.SupplierName,
		req.InvoiceDate,
		req.ProductName,
		req.UnitPriceExclVAT,
		req.VATAmount,
		req.QuantityUnit,
	)
	if err != nil {
		return nil, false, err
	}

	productID, err := s.matchProduct(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if productID != nil {
		if err := observation.MatchProduct(*productID); err != nil {
			return nil, false, err
		}
	}

	if err := s.ensureSupplier(ctx, req.SupplierName); err != nil {
		return nil, false, err
	}

	if err := s.marketRepo.Save(ctx, observation); err != nil {
		return nil, false, err
	}

	if s.cache != nil && observation.ProductID != nil {
		s.cache.Invalidate(ctx, *observation.ProductID)
	}

	response := ToObservationResponse(observation)
	return &response, false, nil
}

// Import records a batch of observation lines. Each line is independent:
// duplicates are counted, failures are reported, and neither stops the rest.
func (s *Service) Import(ctx context.Context, requests []RecordObservationRequest) (*ImportResult, error) {
	result := &ImportResult{}

	for _, req := range requests {
		response, duplicate, err := s.RecordObservation(ctx, req)
		if err != nil {
			result.Failures = append(result.Failures, ImportFailure{
				ProductName: req.ProductName,
				Error:       err.Error(),
			})
			continue
		}
		if duplicate {
			result.Duplicates++
			continue
		}
		result.Recorded = append(result.Recorded, *response)
	}

	return result, nil
}

// LatestPrice returns the most recent observation for a product on or before
// asOf, reading through the cache when one is configured.
func (s *Service) LatestPrice(ctx context.Context, productID uuid.UUID, asOf time.Time) (*ObservationResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, productID); ok && !cached.InvoiceDate.After(asOf) {
			response := ToObservationResponse(cached)
			return &response, nil
		}
	}

	observation, err := s.marketRepo.FindLatestForProduct(ctx, productID, asOf)
	if err != nil {
		return nil, err
	}

	// Only a current-date query may populate the cache. A historical asOf
	// can return an observation that has since been superseded, and caching
	// it would serve the stale price to later current-date queries.
	if s.cache != nil && !asOf.Before(startOfToday()) {
		s.cache.Set(ctx, productID, observation)
	}

	response := ToObservationResponse(observation)
	return &response, nil
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// History returns a product's observations within [from, to]
func (s *Service) History(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]ObservationResponse, error) {
	history, err := s.marketRepo.FindHistoryForProduct(ctx, productID, from, to)
	if err != nil {
		return nil, err
	}
	return ToObservationResponses(history), nil
}

// ClassifyVolatility classifies a product's price behaviour over the
// configured trailing window
func (s *Service) ClassifyVolatility(ctx context.Context, productID uuid.UUID, asOf time.Time) (*VolatilityResponse, error) {
	from := asOf.AddDate(0, 0, -s.cfg.VolatilityWindowDays)
	history, err := s.marketRepo.FindHistoryForProduct(ctx, productID, from, asOf)
	if err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, 0, len(history))
	for i := range history {
		prices = append(prices, history[i].UnitPriceExclVAT)
	}

	level := market.ClassifyVolatility(prices, s.cfg.VolatilityCVThreshold)

	return &VolatilityResponse{
		ProductID:    productID,
		Level:        string(level),
		WindowDays:   s.cfg.VolatilityWindowDays,
		Observations: len(history),
		AsOf:         asOf,
	}, nil
}

// matchProduct resolves the catalog product for an observation. An explicit
// product ID wins; otherwise the free-text line name is matched against
// product codes. Unmatched observations are stored anyway and can be matched
// later.
func (s *Service) matchProduct(ctx context.Context, req RecordObservationRequest) (*uuid.UUID, error) {
	if req.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *req.ProductID)
		if err != nil {
			return nil, err
		}
		return &product.ID, nil
	}

	product, err := s.productRepo.FindByCode(ctx, req.ProductName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product.ID, nil
}

// ensureSupplier registers a supplier the first time it appears in an import
func (s *Service) ensureSupplier(ctx context.Context, name string) error {
	_, err := s.supplierRepo.FindByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	supplier, err := partner.NewSupplier(name)
	if err != nil {
		return err
	}
	return s.supplierRepo.Save(ctx, supplier)
}
