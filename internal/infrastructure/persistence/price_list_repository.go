package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPriceListRepository implements CustomerPriceListRepository using GORM
type GormPriceListRepository struct {
	db *gorm.DB
}

// NewGormPriceListRepository creates a new GormPriceListRepository
func NewGormPriceListRepository(db *gorm.DB) *GormPriceListRepository {
	return &GormPriceListRepository{db: db}
}

// FindByID finds a price list (with its items) by ID
func (r *GormPriceListRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.CustomerPriceList, error) {
	var list pricing.CustomerPriceList
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_name ASC")
		}).
		First(&list, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

// FindByCustomerAndCycle finds the list generated for a customer with the
// given effective-from date
func (r *GormPriceListRepository) FindByCustomerAndCycle(ctx context.Context, customerID uuid.UUID, effectiveFrom time.Time) (*pricing.CustomerPriceList, error) {
	var list pricing.CustomerPriceList
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ? AND effective_from = ?", customerID, effectiveFrom).
		First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

// FindByCustomer returns the customer's lists, newest cycle first.
// Items are not preloaded; the listing endpoints only need the summary fields.
func (r *GormPriceListRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]pricing.CustomerPriceList, error) {
	var lists []pricing.CustomerPriceList
	query := r.db.WithContext(ctx).
		Model(&pricing.CustomerPriceList{}).
		Where("customer_id = ?", customerID)

	for key, value := range filter.Filters {
		if key == "status" {
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	query = query.Order("effective_from DESC")

	if err := query.Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// FindPreviousItemPrice returns the incl-VAT customer price of the most
// recent prior item for the customer+product, from any list with an
// effective-from date strictly before the given date. Returns (nil, nil)
// when the product has never been priced for this customer.
func (r *GormPriceListRepository) FindPreviousItemPrice(ctx context.Context, customerID, productID uuid.UUID, before time.Time) (*decimal.Decimal, error) {
	var price decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&pricing.CustomerPriceListItem{}).
		Select("customer_price_list_items.customer_price_incl_vat").
		Joins("JOIN customer_price_lists ON customer_price_lists.id = customer_price_list_items.price_list_id").
		Where("customer_price_lists.customer_id = ?", customerID).
		Where("customer_price_list_items.product_id = ?", productID).
		Where("customer_price_lists.effective_from < ?", before).
		Order("customer_price_lists.effective_from DESC").
		Limit(1).
		Scan(&price).Error
	if err != nil {
		return nil, err
	}
	// Scan leaves the destination zero-valued when no row matched. A genuine
	// zero price cannot occur because generated prices are strictly positive.
	if price.IsZero() {
		return nil, nil
	}
	return &price, nil
}

// Save persists a price list together with its items
func (r *GormPriceListRepository) Save(ctx context.Context, list *pricing.CustomerPriceList) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(list).Error
}

// Delete removes a price list and, via cascade, its items
func (r *GormPriceListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&pricing.CustomerPriceList{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts price lists matching the filter
func (r *GormPriceListRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&pricing.CustomerPriceList{})

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPriceListRepository implements CustomerPriceListRepository
var _ pricing.CustomerPriceListRepository = (*GormPriceListRepository)(nil)
