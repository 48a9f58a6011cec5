package market

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/catalog"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockMarketPriceRepository is a mock implementation of MarketPriceRepository
type MockMarketPriceRepository struct {
	mock.Mock
}

func (m *MockMarketPriceRepository) FindByID(ctx context.Context, id uuid.UUID) (*market.MarketPrice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.MarketPrice), args.Error(1)
}

func (m *MockMarketPriceRepository) FindLatestForProduct(ctx context.Context, productID uuid.UUID, asOf time.Time) (*market.MarketPrice, error) {
	args := m.Called(ctx, productID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*market.MarketPrice), args.Error(1)
}

func (m *MockMarketPriceRepository) FindHistoryForProduct(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]market.MarketPrice, error) {
	args := m.Called(ctx, productID, from, to)
	return args.Get(0).([]market.MarketPrice), args.Error(1)
}

func (m *MockMarketPriceRepository) ExistsObservation(ctx context.Context, supplierName string, invoiceDate time.Time, productName string) (bool, error) {
	args := m.Called(ctx, supplierName, invoiceDate, productName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarketPriceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]market.MarketPrice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]market.MarketPrice), args.Error(1)
}

func (m *MockMarketPriceRepository) Save(ctx context.Context, price *market.MarketPrice) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

func (m *MockMarketPriceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByName(ctx context.Context, name string) (*partner.Supplier, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeCache is an in-test LatestPriceCache
type fakeCache struct {
	entries     map[uuid.UUID]*market.MarketPrice
	invalidated []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID]*market.MarketPrice)}
}

func (c *fakeCache) Get(_ context.Context, productID uuid.UUID) (*market.MarketPrice, bool) {
	price, ok := c.entries[productID]
	return price, ok
}

func (c *fakeCache) Set(_ context.Context, productID uuid.UUID, price *market.MarketPrice) {
	c.entries[productID] = price
}

func (c *fakeCache) Invalidate(_ context.Context, productID uuid.UUID) {
	delete(c.entries, productID)
	c.invalidated = append(c.invalidated, productID)
}

// =============================================================================
// Fixtures
// =============================================================================

func obsDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newObservationRequest(productID *uuid.UUID) RecordObservationRequest {
	return RecordObservationRequest{
		SupplierName:     "Tshwane Fresh Produce Market",
		InvoiceDate:      obsDate(2025, 3, 10),
		ProductName:      "Tomatoes",
		ProductID:        productID,
		UnitPriceExclVAT: decimal.NewFromFloat(20.00),
		VATAmount:        decimal.NewFromFloat(3.00),
		QuantityUnit:     "kg",
	}
}

type marketFixture struct {
	marketRepo   *MockMarketPriceRepository
	productRepo  *MockProductRepository
	supplierRepo *MockSupplierRepository
	cache        *fakeCache
	service      *Service
}

func newMarketFixture() *marketFixture {
	f := &marketFixture{
		marketRepo:   new(MockMarketPriceRepository),
		productRepo:  new(MockProductRepository),
		supplierRepo: new(MockSupplierRepository),
		cache:        newFakeCache(),
	}
	f.service = NewService(f.marketRepo, f.productRepo, f.supplierRepo, f.cache, ServiceConfig{
		VolatilityWindowDays:  30,
		VolatilityCVThreshold: 0.15,
	})
	return f
}

// =============================================================================
// Tests
// =============================================================================

func TestService_RecordObservation(t *testing.T) {
	ctx := context.Background()

	t.Run("records a matched observation and invalidates the cache", func(t *testing.T) {
		f := newMarketFixture()

		product, err := catalog.NewProduct("TOM-001", "Tomatoes", "kg")
		require.NoError(t, err)
		f.cache.entries[product.ID] = &market.MarketPrice{}

		f.marketRepo.On("ExistsObservation", ctx, "Tshwane Fresh Produce Market", obsDate(2025, 3, 10), "Tomatoes").
			Return(false, nil)
		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.supplierRepo.On("FindByName", ctx, "Tshwane Fresh Produce Market").
			Return(&partner.Supplier{}, nil)
		f.marketRepo.On("Save", ctx, mock.AnythingOfType("*market.MarketPrice")).Return(nil)

		response, duplicate, err := f.service.RecordObservation(ctx, newObservationRequest(&product.ID))

		require.NoError(t, err)
		assert.False(t, duplicate)
		require.NotNil(t, response.ProductID)
		assert.Equal(t, product.ID, *response.ProductID)
		assert.True(t, response.UnitPriceInclVAT.Equal(decimal.NewFromFloat(23.00)))
		assert.True(t, response.VATPercentage.Equal(decimal.NewFromFloat(15.00)))
		assert.Contains(t, f.cache.invalidated, product.ID)
	})

	t.Run("re-import of the same line is a duplicate, not an error", func(t *testing.T) {
		f := newMarketFixture()

		f.marketRepo.On("ExistsObservation", ctx, "Tshwane Fresh Produce Market", obsDate(2025, 3, 10), "Tomatoes").
			Return(true, nil)

		response, duplicate, err := f.service.RecordObservation(ctx, newObservationRequest(nil))

		require.NoError(t, err)
		assert.True(t, duplicate)
		assert.Nil(t, response)
		f.marketRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unmatched product is stored without a product link", func(t *testing.T) {
		f := newMarketFixture()

		f.marketRepo.On("ExistsObservation", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil)
		f.productRepo.On("FindByCode", ctx, "Tomatoes").Return(nil, shared.ErrNotFound)
		f.supplierRepo.On("FindByName", ctx, "Tshwane Fresh Produce Market").
			Return(&partner.Supplier{}, nil)
		f.marketRepo.On("Save", ctx, mock.AnythingOfType("*market.MarketPrice")).Return(nil)

		response, duplicate, err := f.service.RecordObservation(ctx, newObservationRequest(nil))

		require.NoError(t, err)
		assert.False(t, duplicate)
		assert.Nil(t, response.ProductID)
	})

	t.Run("first import from a new supplier registers it", func(t *testing.T) {
		f := newMarketFixture()

		f.marketRepo.On("ExistsObservation", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil)
		f.productRepo.On("FindByCode", ctx, "Tomatoes").Return(nil, shared.ErrNotFound)
		f.supplierRepo.On("FindByName", ctx, "Tshwane Fresh Produce Market").
			Return(nil, shared.ErrNotFound)
		f.supplierRepo.On("Save", ctx, mock.AnythingOfType("*partner.Supplier")).Return(nil)
		f.marketRepo.On("Save", ctx, mock.AnythingOfType("*market.MarketPrice")).Return(nil)

		_, _, err := f.service.RecordObservation(ctx, newObservationRequest(nil))

		require.NoError(t, err)
		f.supplierRepo.AssertCalled(t, "Save", ctx, mock.AnythingOfType("*partner.Supplier"))
	})

	t.Run("zero price is rejected", func(t *testing.T) {
		f := newMarketFixture()

		f.marketRepo.On("ExistsObservation", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil)

		req := newObservationRequest(nil)
		req.UnitPriceExclVAT = decimal.Zero
		_, _, err := f.service.RecordObservation(ctx, req)

		assert.ErrorIs(t, err, shared.ErrInvalidMarketPrice)
		f.marketRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("lines are independent", func(t *testing.T) {
		f := newMarketFixture()

		good := newObservationRequest(nil)
		duplicate := newObservationRequest(nil)
		duplicate.ProductName = "Potatoes"
		bad := newObservationRequest(nil)
		bad.ProductName = "Onions"
		bad.UnitPriceExclVAT = decimal.NewFromInt(-1)

		f.marketRepo.On("ExistsObservation", ctx, mock.Anything, mock.Anything, "Tomatoes").Return(false, nil)
		f.marketRepo.On("ExistsObservation", ctx, mock.Anything, mock.Anything, "Potatoes").Return(true, nil)
		f.marketRepo.On("ExistsObservation", ctx, mock.Anything, mock.Anything, "Onions").Return(false, nil)
		f.productRepo.On("FindByCode", ctx, "Tomatoes").Return(nil, shared.ErrNotFound)
		f.supplierRepo.On("FindByName", ctx, mock.Anything).Return(&partner.Supplier{}, nil)
		f.marketRepo.On("Save", ctx, mock.AnythingOfType("*market.MarketPrice")).Return(nil)

		result, err := f.service.Import(ctx, []RecordObservationRequest{good, duplicate, bad})

		require.NoError(t, err)
		assert.Len(t, result.Recorded, 1)
		assert.Equal(t, 1, result.Duplicates)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "Onions", result.Failures[0].ProductName)
	})
}

func TestService_LatestPrice(t *testing.T) {
	ctx := context.Background()
	asOf := obsDate(2025, 3, 10)

	priceAt := func(t *testing.T, invoiceDate time.Time, excl float64) *market.MarketPrice {
		t.Helper()
		price, err := market.NewMarketPrice(
			"Tshwane Fresh Produce Market", invoiceDate, "Tomatoes",
			decimal.NewFromFloat(excl), decimal.Zero, "kg")
		require.NoError(t, err)
		return price
	}

	t.Run("current query reads through and populates the cache", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()
		now := time.Now().UTC()
		price := priceAt(t, now.AddDate(0, 0, -2), 20)

		f.marketRepo.On("FindLatestForProduct", ctx, productID, now).Return(price, nil)

		response, err := f.service.LatestPrice(ctx, productID, now)

		require.NoError(t, err)
		assert.True(t, response.UnitPriceExclVAT.Equal(decimal.NewFromFloat(20)))
		_, cached := f.cache.entries[productID]
		assert.True(t, cached)
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()
		f.cache.entries[productID] = priceAt(t, obsDate(2025, 3, 8), 20)

		response, err := f.service.LatestPrice(ctx, productID, asOf)

		require.NoError(t, err)
		assert.True(t, response.UnitPriceExclVAT.Equal(decimal.NewFromFloat(20)))
		f.marketRepo.AssertNotCalled(t, "FindLatestForProduct", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("historical lookup does not populate the cache", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()

		f.marketRepo.On("FindLatestForProduct", ctx, productID, asOf).
			Return(priceAt(t, obsDate(2025, 3, 8), 20), nil)

		_, err := f.service.LatestPrice(ctx, productID, asOf)

		require.NoError(t, err)
		assert.Empty(t, f.cache.entries)
	})

	t.Run("historical lookup never hides a newer observation", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()
		older := priceAt(t, obsDate(2025, 3, 1), 10)
		newer := priceAt(t, obsDate(2025, 3, 8), 20)

		f.marketRepo.On("FindLatestForProduct", ctx, productID, obsDate(2025, 3, 2)).Return(older, nil)
		f.marketRepo.On("FindLatestForProduct", ctx, productID, obsDate(2025, 3, 10)).Return(newer, nil)

		first, err := f.service.LatestPrice(ctx, productID, obsDate(2025, 3, 2))
		require.NoError(t, err)
		assert.True(t, first.UnitPriceExclVAT.Equal(decimal.NewFromFloat(10)))

		second, err := f.service.LatestPrice(ctx, productID, obsDate(2025, 3, 10))
		require.NoError(t, err)
		assert.True(t, second.UnitPriceExclVAT.Equal(decimal.NewFromFloat(20)))
	})

	t.Run("missing observation propagates ErrNotFound", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()

		f.marketRepo.On("FindLatestForProduct", ctx, productID, asOf).
			Return(nil, shared.ErrNotFound)

		_, err := f.service.LatestPrice(ctx, productID, asOf)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_ClassifyVolatility(t *testing.T) {
	ctx := context.Background()
	asOf := obsDate(2025, 3, 10)
	from := asOf.AddDate(0, 0, -30)

	history := func(t *testing.T, prices ...float64) []market.MarketPrice {
		t.Helper()
		observations := make([]market.MarketPrice, 0, len(prices))
		for i, p := range prices {
			obs, err := market.NewMarketPrice(
				"Tshwane Fresh Produce Market", from.AddDate(0, 0, i), "Tomatoes",
				decimal.NewFromFloat(p), decimal.Zero, "kg")
			require.NoError(t, err)
			observations = append(observations, *obs)
		}
		return observations
	}

	t.Run("swinging prices classify volatile", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()

		f.marketRepo.On("FindHistoryForProduct", ctx, productID, from, asOf).
			Return(history(t, 10, 20, 10, 25), nil)

		response, err := f.service.ClassifyVolatility(ctx, productID, asOf)

		require.NoError(t, err)
		assert.Equal(t, "volatile", response.Level)
		assert.Equal(t, 4, response.Observations)
	})

	t.Run("steady prices classify stable", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()

		f.marketRepo.On("FindHistoryForProduct", ctx, productID, from, asOf).
			Return(history(t, 20, 20.5, 19.8, 20.2), nil)

		response, err := f.service.ClassifyVolatility(ctx, productID, asOf)

		require.NoError(t, err)
		assert.Equal(t, "stable", response.Level)
	})

	t.Run("a single observation classifies stable", func(t *testing.T) {
		f := newMarketFixture()
		productID := uuid.New()

		f.marketRepo.On("FindHistoryForProduct", ctx, productID, from, asOf).
			Return(history(t, 20), nil)

		response, err := f.service.ClassifyVolatility(ctx, productID, asOf)

		require.NoError(t, err)
		assert.Equal(t, "stable", response.Level)
	})
}
