package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMarketPriceRepository implements MarketPriceRepository using GORM
type GormMarketPriceRepository struct {
	db *gorm.DB
}

// NewGormMarketPriceRepository creates a new GormMarketPriceRepository
func NewGormMarketPriceRepository(db *gorm.DB) *GormMarketPriceRepository {
	return &GormMarketPriceRepository{db: db}
}

// FindByID finds a market price by its ID
func (r *GormMarketPriceRepository) FindByID(ctx context.Context, id uuid.UUID) (*market.MarketPrice, error) {
	var price market.MarketPrice
	if err := r.db.WithContext(ctx).First(&price, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// FindLatestForProduct returns the most recent observation for a product with
// invoice_date <= asOf. When two observations share the newest invoice date
// the most recently recorded one wins.
func (r *GormMarketPriceRepository) FindLatestForProduct(ctx context.Context, productID uuid.UUID, asOf time.Time) (*market.MarketPrice, error) {
	var price market.MarketPrice
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND invoice_date <= ?", productID, asOf).
		Order("invoice_date DESC, created_at DESC").
		First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// FindHistoryForProduct returns observations for a product within [from, to],
// ordered ascending by invoice date.
func (r *GormMarketPriceRepository) FindHistoryForProduct(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]market.MarketPrice, error) {
	var prices []market.MarketPrice
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND invoice_date >= ? AND invoice_date <= ?", productID, from, to).
		Order("invoice_date ASC, created_at ASC").
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// ExistsObservation checks whether an observation already exists for the
// supplier+date+product triple
func (r *GormMarketPriceRepository) ExistsObservation(ctx context.Context, supplierName string, invoiceDate time.Time, productName string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&market.MarketPrice{}).
		Where("supplier_name = ? AND invoice_date = ? AND product_name = ?", supplierName, invoiceDate, productName).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds all market prices matching the filter
func (r *GormMarketPriceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]market.MarketPrice, error) {
	var prices []market.MarketPrice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&market.MarketPrice{}), filter)

	if err := query.Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// Save creates a market price observation
func (r *GormMarketPriceRepository) Save(ctx context.Context, price *market.MarketPrice) error {
	return r.db.WithContext(ctx).Save(price).Error
}

// Count counts observations matching the filter
func (r *GormMarketPriceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&market.MarketPrice{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormMarketPriceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, MarketPriceSortFields, "invoice_date")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("invoice_date DESC, product_name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMarketPriceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("product_name ILIKE ? OR supplier_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "supplier_name":
			query = query.Where("supplier_name = ?", value)
		case "invoice_date_from":
			query = query.Where("invoice_date >= ?", value)
		case "invoice_date_to":
			query = query.Where("invoice_date <= ?", value)
		case "unmatched":
			if value == true {
				query = query.Where("product_id IS NULL")
			}
		}
	}

	return query
}

// Ensure GormMarketPriceRepository implements MarketPriceRepository
var _ market.MarketPriceRepository = (*GormMarketPriceRepository)(nil)
