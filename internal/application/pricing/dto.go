package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
)

// =============================================================================
// Pricing rule DTOs
// =============================================================================

// CreatePricingRuleRequest represents a request to create a new pricing rule
type CreatePricingRuleRequest struct {
	Name                    string                     `json:"name" binding:"required,min=1,max=200"`
	Segment                 string                     `json:"segment" binding:"required,oneof=premium standard budget wholesale retail"`
	BaseMarkupPercentage    decimal.Decimal            `json:"base_markup_percentage" binding:"required"`
	VolatilityAdjustment    decimal.Decimal            `json:"volatility_adjustment"`
	MinimumMarginPercentage decimal.Decimal            `json:"minimum_margin_percentage"`
	CategoryAdjustments     map[string]decimal.Decimal `json:"category_adjustments"`
	TrendMultiplier         *decimal.Decimal           `json:"trend_multiplier"`
	SeasonalAdjustment      decimal.Decimal            `json:"seasonal_adjustment"`
	EffectiveFrom           time.Time                  `json:"effective_from" binding:"required"`
	EffectiveUntil          *time.Time                 `json:"effective_until"`
	CreatedBy               *uuid.UUID                 `json:"-"` // Set from JWT context, not from request body
}

// UpdateAdjustmentsRequest represents a request to retune a rule's adjustments
type UpdateAdjustmentsRequest struct {
	VolatilityAdjustment *decimal.Decimal           `json:"volatility_adjustment"`
	TrendMultiplier      *decimal.Decimal           `json:"trend_multiplier"`
	SeasonalAdjustment   *decimal.Decimal           `json:"seasonal_adjustment"`
	CategoryAdjustments  map[string]decimal.Decimal `json:"category_adjustments"`
}

// PricingRuleResponse represents a pricing rule in API responses
type PricingRuleResponse struct {
	ID                      uuid.UUID                  `json:"id"`
	Name                    string                     `json:"name"`
	Segment                 string                     `json:"segment"`
	BaseMarkupPercentage    decimal.Decimal            `json:"base_markup_percentage"`
	VolatilityAdjustment    decimal.Decimal            `json:"volatility_adjustment"`
	MinimumMarginPercentage decimal.Decimal            `json:"minimum_margin_percentage"`
	CategoryAdjustments     map[string]decimal.Decimal `json:"category_adjustments"`
	TrendMultiplier         decimal.Decimal            `json:"trend_multiplier"`
	SeasonalAdjustment      decimal.Decimal            `json:"seasonal_adjustment"`
	EffectiveFrom           time.Time                  `json:"effective_from"`
	EffectiveUntil          *time.Time                 `json:"effective_until"`
	IsActive                bool                       `json:"is_active"`
	CreatedAt               time.Time                  `json:"created_at"`
	UpdatedAt               time.Time                  `json:"updated_at"`
	Version                 int                        `json:"version"`
}

// RuleListFilter represents filter options for the rule list
type RuleListFilter struct {
	Search   string `form:"search"`
	Segment  string `form:"segment" binding:"omitempty,oneof=premium standard budget wholesale retail"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToPricingRuleResponse converts a domain rule to a response DTO
func ToPricingRuleResponse(rule *pricing.PricingRule) PricingRuleResponse {
	return PricingRuleResponse{
		ID:                      rule.ID,
		Name:                    rule.Name,
		Segment:                 string(rule.Segment),
		BaseMarkupPercentage:    rule.BaseMarkupPercentage,
		VolatilityAdjustment:    rule.VolatilityAdjustment,
		MinimumMarginPercentage: rule.MinimumMarginPercentage,
		CategoryAdjustments:     rule.CategoryAdjustments,
		TrendMultiplier:         rule.TrendMultiplier,
		SeasonalAdjustment:      rule.SeasonalAdjustment,
		EffectiveFrom:           rule.EffectiveFrom,
		EffectiveUntil:          rule.EffectiveUntil,
		IsActive:                rule.IsActive,
		CreatedAt:               rule.CreatedAt,
		UpdatedAt:               rule.UpdatedAt,
		Version:                 rule.Version,
	}
}

// ToPricingRuleResponses converts a slice of domain rules to response DTOs
func ToPricingRuleResponses(rules []pricing.PricingRule) []PricingRuleResponse {
	responses := make([]PricingRuleResponse, 0, len(rules))
	for i := range rules {
		responses = append(responses, ToPricingRuleResponse(&rules[i]))
	}
	return responses
}

// =============================================================================
// Price list DTOs
// =============================================================================

// GeneratePriceListRequest represents a request to generate one customer's
// price list for a cycle
type GeneratePriceListRequest struct {
	CustomerID  uuid.UUID  `json:"customer_id" binding:"required"`
	EffectiveAt time.Time  `json:"effective_at" binding:"required"`
	Regenerate  bool       `json:"regenerate"` // Replace an existing list for the same cycle
	GeneratedBy *uuid.UUID `json:"-"`
}

// BatchGenerateRequest represents a request to generate lists for every
// active customer in one pass
type BatchGenerateRequest struct {
	EffectiveAt time.Time  `json:"effective_at" binding:"required"`
	Regenerate  bool       `json:"regenerate"`
	GeneratedBy *uuid.UUID `json:"-"`
}

// PriceListItemResponse represents one product line in API responses
type PriceListItemResponse struct {
	ID                    uuid.UUID        `json:"id"`
	ProductID             uuid.UUID        `json:"product_id"`
	ProductName           string           `json:"product_name"`
	CategoryName          string           `json:"category_name"`
	Unit                  string           `json:"unit"`
	MarketPriceExclVAT    decimal.Decimal  `json:"market_price_excl_vat"`
	MarketPriceInclVAT    decimal.Decimal  `json:"market_price_incl_vat"`
	MarketPriceDate       time.Time        `json:"market_price_date"`
	MarkupPercentage      decimal.Decimal  `json:"markup_percentage"`
	CustomerPriceExclVAT  decimal.Decimal  `json:"customer_price_excl_vat"`
	CustomerPriceInclVAT  decimal.Decimal  `json:"customer_price_incl_vat"`
	PreviousPrice         *decimal.Decimal `json:"previous_price"`
	PriceChangePercentage decimal.Decimal  `json:"price_change_percentage"`
	IsPriceIncrease       bool             `json:"is_price_increase"`
	IsSignificantChange   bool             `json:"is_significant_change"`
	IsVolatile            bool             `json:"is_volatile"`
	IsSeasonal            bool             `json:"is_seasonal"`
	IsPremium             bool             `json:"is_premium"`
}

// SkippedProductResponse reports one product excluded from a generated list
type SkippedProductResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Reason      string    `json:"reason"`
	Detail      string    `json:"detail,omitempty"`
}

// PriceListResponse represents a generated price list in API responses
type PriceListResponse struct {
	ID                      uuid.UUID                `json:"id"`
	CustomerID              uuid.UUID                `json:"customer_id"`
	PricingRuleID           uuid.UUID                `json:"pricing_rule_id"`
	Name                    string                   `json:"name"`
	EffectiveFrom           time.Time                `json:"effective_from"`
	EffectiveUntil          *time.Time               `json:"effective_until"`
	GeneratedAt             time.Time                `json:"generated_at"`
	MarketDataDate          time.Time                `json:"market_data_date"`
	MarketDataSource        string                   `json:"market_data_source"`
	Status                  string                   `json:"status"`
	TotalProducts           int                      `json:"total_products"`
	AverageMarkupPercentage decimal.Decimal          `json:"average_markup_percentage"`
	TotalListValue          decimal.Decimal          `json:"total_list_value"`
	Items                   []PriceListItemResponse  `json:"items,omitempty"`
	Skipped                 []SkippedProductResponse `json:"skipped,omitempty"`
}

// PriceListSummaryResponse represents a price list without its items
type PriceListSummaryResponse struct {
	ID                      uuid.UUID       `json:"id"`
	CustomerID              uuid.UUID       `json:"customer_id"`
	Name                    string          `json:"name"`
	EffectiveFrom           time.Time       `json:"effective_from"`
	EffectiveUntil          *time.Time      `json:"effective_until"`
	Status                  string          `json:"status"`
	TotalProducts           int             `json:"total_products"`
	AverageMarkupPercentage decimal.Decimal `json:"average_markup_percentage"`
	TotalListValue          decimal.Decimal `json:"total_list_value"`
	GeneratedAt             time.Time       `json:"generated_at"`
}

// PriceListListFilter represents filter options for the price list listing
type PriceListListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft active sent acknowledged"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BatchGenerateResponse reports the outcome of a batch generation run
type BatchGenerateResponse struct {
	Generated []PriceListSummaryResponse `json:"generated"`
	Failures  []BatchFailure             `json:"failures,omitempty"`
}

// BatchFailure records one customer whose generation failed
type BatchFailure struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Error        string    `json:"error"`
}

// ToPriceListItemResponse converts a domain item to a response DTO.
// The significance threshold is in percentage points.
func ToPriceListItemResponse(item *pricing.CustomerPriceListItem, significanceThreshold decimal.Decimal) PriceListItemResponse {
	change := item.PriceChange()
	return PriceListItemResponse{
		ID:                    item.ID,
		ProductID:             item.ProductID,
		ProductName:           item.ProductName,
		CategoryName:          item.CategoryName,
		Unit:                  item.Unit,
		MarketPriceExclVAT:    item.MarketPriceExclVAT,
		MarketPriceInclVAT:    item.MarketPriceInclVAT,
		MarketPriceDate:       item.MarketPriceDate,
		MarkupPercentage:      item.MarkupPercentage,
		CustomerPriceExclVAT:  item.CustomerPriceExclVAT,
		CustomerPriceInclVAT:  item.CustomerPriceInclVAT,
		PreviousPrice:         item.PreviousPrice,
		PriceChangePercentage: change.Percentage,
		IsPriceIncrease:       change.IsIncrease(),
		IsSignificantChange:   change.IsSignificant(significanceThreshold),
		IsVolatile:            item.IsVolatile,
		IsSeasonal:            item.IsSeasonal,
		IsPremium:             item.IsPremium,
	}
}

// ToPriceListResponse converts a domain list to a response DTO
func ToPriceListResponse(list *pricing.CustomerPriceList, skipped []pricing.SkippedProduct, significanceThreshold decimal.Decimal) PriceListResponse {
	items := make([]PriceListItemResponse, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, ToPriceListItemResponse(&list.Items[i], significanceThreshold))
	}

	var skippedResponses []SkippedProductResponse
	for _, s := range skipped {
		detail := ""
		if s.Err != nil {
			detail = s.Err.Error()
		}
		skippedResponses = append(skippedResponses, SkippedProductResponse{
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			Reason:      string(s.Reason),
			Detail:      detail,
		})
	}

	return PriceListResponse{
		ID:                      list.ID,
		CustomerID:              list.CustomerID,
		PricingRuleID:           list.PricingRuleID,
		Name:                    list.Name,
		EffectiveFrom:           list.EffectiveFrom,
		EffectiveUntil:          list.EffectiveUntil,
		GeneratedAt:             list.GeneratedAt,
		MarketDataDate:          list.MarketDataDate,
		MarketDataSource:        list.MarketDataSource,
		Status:                  string(list.Status),
		TotalProducts:           list.TotalProducts,
		AverageMarkupPercentage: list.AverageMarkupPercentage,
		TotalListValue:          list.TotalListValue,
		Items:                   items,
		Skipped:                 skippedResponses,
	}
}

// ToPriceListSummaryResponse converts a domain list to a summary DTO
func ToPriceListSummaryResponse(list *pricing.CustomerPriceList) PriceListSummaryResponse {
	return PriceListSummaryResponse{
		ID:                      list.ID,
		CustomerID:              list.CustomerID,
		Name:                    list.Name,
		EffectiveFrom:           list.EffectiveFrom,
		EffectiveUntil:          list.EffectiveUntil,
		Status:                  string(list.Status),
		TotalProducts:           list.TotalProducts,
		AverageMarkupPercentage: list.AverageMarkupPercentage,
		TotalListValue:          list.TotalListValue,
		GeneratedAt:             list.GeneratedAt,
	}
}

// ToPriceListSummaryResponses converts a slice of lists to summary DTOs
func ToPriceListSummaryResponses(lists []pricing.CustomerPriceList) []PriceListSummaryResponse {
	responses := make([]PriceListSummaryResponse, 0, len(lists))
	for i := range lists {
		responses = append(responses, ToPriceListSummaryResponse(&lists[i]))
	}
	return responses
}
