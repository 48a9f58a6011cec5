package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/market"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryAdjustments maps a lowercase category name to an additive markup
// adjustment in percentage points. An unknown category means zero adjustment;
// that tolerant default is deliberate, not an oversight. Malformed values are
// rejected when the mapping is built or scanned, never during calculation.
type CategoryAdjustments map[string]decimal.Decimal

// NewCategoryAdjustments builds a validated adjustment mapping.
// Keys are normalized to lowercase.
func NewCategoryAdjustments(adjustments map[string]decimal.Decimal) (CategoryAdjustments, error) {
	result := make(CategoryAdjustments, len(adjustments))
	for category, adjustment := range adjustments {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			return nil, shared.NewDomainError("INVALID_CATEGORY_ADJUSTMENT", "Category adjustment key cannot be empty")
		}
		result[normalized] = adjustment
	}
	return result, nil
}

// Get returns the adjustment for a category name (matched case-insensitively)
// and whether one is configured.
func (a CategoryAdjustments) Get(category string) (decimal.Decimal, bool) {
	adjustment, ok := a[strings.ToLower(category)]
	return adjustment, ok
}

// Value implements driver.Valuer for JSONB storage
func (a CategoryAdjustments) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner. Non-numeric adjustment values fail here, at
// rule-load time, because a broken rule would otherwise poison every
// calculation it is reused for.
func (a *CategoryAdjustments) Scan(value interface{}) error {
	if value == nil {
		*a = CategoryAdjustments{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for category adjustments: %T", value)
	}

	decoded := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("malformed category adjustments: %w", err)
	}

	normalized, err := NewCategoryAdjustments(decoded)
	if err != nil {
		return err
	}
	*a = normalized
	return nil
}

// PricingRule is a named, versioned pricing policy for one customer segment.
// Rules are authored by staff and read-only to the engine: a policy change
// is a new rule version, never an in-place edit.
type PricingRule struct {
	shared.AuditedAggregateRoot
	Name                    string                  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Segment                 partner.CustomerSegment `gorm:"type:varchar(20);not null;index"`
	BaseMarkupPercentage    decimal.Decimal         `gorm:"type:decimal(8,2);not null"`
	VolatilityAdjustment    decimal.Decimal         `gorm:"type:decimal(8,2);not null;default:0"`
	MinimumMarginPercentage decimal.Decimal         `gorm:"type:decimal(8,2);not null;default:0"`
	CategoryAdjustments     CategoryAdjustments     `gorm:"type:jsonb;not null;default:'{}'"`
	TrendMultiplier         decimal.Decimal         `gorm:"type:decimal(8,4);not null;default:1"`
	SeasonalAdjustment      decimal.Decimal         `gorm:"type:decimal(8,2);not null;default:0"`
	EffectiveFrom           time.Time               `gorm:"type:date;not null;index"`
	EffectiveUntil          *time.Time              `gorm:"type:date"`
	IsActive                bool                    `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PricingRule) TableName() string {
	return "pricing_rules"
}

// NewPricingRule creates a new pricing rule effective from the given date,
// with a neutral trend multiplier and no adjustments.
func NewPricingRule(
	name string,
	segment partner.CustomerSegment,
	baseMarkup, minimumMargin decimal.Decimal,
	effectiveFrom time.Time,
	createdBy *uuid.UUID,
) (*PricingRule, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Pricing rule name cannot be empty")
	}
	if !segment.IsValid() {
		return nil, shared.NewDomainError("INVALID_SEGMENT", "Unknown customer segment: "+string(segment))
	}
	if baseMarkup.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MARKUP", "Base markup percentage cannot be negative")
	}
	if minimumMargin.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MARGIN", "Minimum margin percentage cannot be negative")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Effective from date is required")
	}

	rule := &PricingRule{
		AuditedAggregateRoot:    shared.NewAuditedAggregateRoot(createdBy),
		Name:                    name,
		Segment:                 segment,
		BaseMarkupPercentage:    baseMarkup,
		MinimumMarginPercentage: minimumMargin,
		CategoryAdjustments:     CategoryAdjustments{},
		TrendMultiplier:         decimal.NewFromInt(1),
		EffectiveFrom:           truncateToDate(effectiveFrom),
		IsActive:                true,
	}

	rule.AddDomainEvent(NewPricingRuleCreatedEvent(rule))

	return rule, nil
}

// SetAdjustments configures the volatility surcharge, trend multiplier and
// seasonal adjustment in one call.
func (r *PricingRule) SetAdjustments(volatilityAdjustment, trendMultiplier, seasonalAdjustment decimal.Decimal) error {
	if trendMultiplier.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_MULTIPLIER", "Trend multiplier must be positive")
	}

	r.VolatilityAdjustment = volatilityAdjustment
	r.TrendMultiplier = trendMultiplier
	r.SeasonalAdjustment = seasonalAdjustment
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// SetCategoryAdjustments replaces the category adjustment mapping
func (r *PricingRule) SetCategoryAdjustments(adjustments map[string]decimal.Decimal) error {
	normalized, err := NewCategoryAdjustments(adjustments)
	if err != nil {
		return err
	}

	r.CategoryAdjustments = normalized
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// SetEffectiveUntil bounds the rule's effective window
func (r *PricingRule) SetEffectiveUntil(until time.Time) error {
	date := truncateToDate(until)
	if date.Before(r.EffectiveFrom) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Effective until cannot precede effective from")
	}

	r.EffectiveUntil = &date
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Deactivate takes the rule out of service. A deactivated rule is never
// effective, regardless of its date window.
func (r *PricingRule) Deactivate() error {
	if !r.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Pricing rule is already inactive")
	}

	r.IsActive = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewPricingRuleDeactivatedEvent(r))

	return nil
}

// IsEffective reports whether the rule applies as of the given date
func (r *PricingRule) IsEffective(asOf time.Time) bool {
	if !r.IsActive {
		return false
	}
	date := truncateToDate(asOf)
	if date.Before(truncateToDate(r.EffectiveFrom)) {
		return false
	}
	if r.EffectiveUntil != nil && date.After(truncateToDate(*r.EffectiveUntil)) {
		return false
	}
	return true
}

// CalculateMarkup computes the final markup percentage for a product under
// this rule. The order of operations is the business logic:
//
//  1. start from the base markup
//  2. add the volatility surcharge when the product is volatile
//  3. add the category adjustment when one is configured (unknown category
//     means zero adjustment)
//  4. multiply by the trend multiplier
//  5. add the seasonal adjustment
//  6. clamp to the minimum margin floor, which can only raise the result
//
// The result is quantized to 2 decimal places. Pure and deterministic.
func (r *PricingRule) CalculateMarkup(
	categoryName string,
	marketPrice decimal.Decimal,
	volatility market.VolatilityLevel,
) (decimal.Decimal, error) {
	if marketPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.ErrInvalidMarketPrice
	}

	markup := r.BaseMarkupPercentage

	if volatility == market.VolatilityVolatile {
		markup = markup.Add(r.VolatilityAdjustment)
	}

	if adjustment, ok := r.CategoryAdjustments.Get(categoryName); ok {
		markup = markup.Add(adjustment)
	}

	markup = markup.Mul(r.TrendMultiplier)
	markup = markup.Add(r.SeasonalAdjustment)

	if markup.LessThan(r.MinimumMarginPercentage) {
		markup = r.MinimumMarginPercentage
	}

	return markup.Round(2), nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
