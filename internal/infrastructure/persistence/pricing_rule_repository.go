package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPricingRuleRepository implements PricingRuleRepository using GORM
type GormPricingRuleRepository struct {
	db *gorm.DB
}

// NewGormPricingRuleRepository creates a new GormPricingRuleRepository
func NewGormPricingRuleRepository(db *gorm.DB) *GormPricingRuleRepository {
	return &GormPricingRuleRepository{db: db}
}

// FindByID finds a rule by its ID
func (r *GormPricingRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.PricingRule, error) {
	var rule pricing.PricingRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindByName finds a rule by its unique name
func (r *GormPricingRuleRepository) FindByName(ctx context.Context, name string) (*pricing.PricingRule, error) {
	var rule pricing.PricingRule
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindEffectiveBySegment returns all rules for a segment that are active and
// effective as of the given date. Ordered by created_at descending so the
// caller can apply the most-recently-created tie-break.
func (r *GormPricingRuleRepository) FindEffectiveBySegment(ctx context.Context, segment partner.CustomerSegment, asOf time.Time) ([]pricing.PricingRule, error) {
	var rules []pricing.PricingRule
	if err := r.db.WithContext(ctx).
		Where("segment = ? AND is_active = ?", segment, true).
		Where("effective_from <= ?", asOf).
		Where("effective_until IS NULL OR effective_until >= ?", asOf).
		Order("created_at DESC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindAll finds all rules matching the filter
func (r *GormPricingRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.PricingRule, error) {
	var rules []pricing.PricingRule
	query := r.applyFilter(r.db.WithContext(ctx).Model(&pricing.PricingRule{}), filter)

	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Save creates or updates a rule
func (r *GormPricingRuleRepository) Save(ctx context.Context, rule *pricing.PricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Count counts rules matching the filter
func (r *GormPricingRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&pricing.PricingRule{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPricingRuleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, PricingRuleSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPricingRuleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "segment":
			query = query.Where("segment = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "effective_at":
			query = query.
				Where("effective_from <= ?", value).
				Where("effective_until IS NULL OR effective_until >= ?", value)
		}
	}

	return query
}

// Ensure GormPricingRuleRepository implements PricingRuleRepository
var _ pricing.PricingRuleRepository = (*GormPricingRuleRepository)(nil)
