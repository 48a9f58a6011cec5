package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"name":        true,
	"category_id": true,
	"unit":        true,
	"base_price":  true,
	"status":      true,
	"sort_order":  true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"display_name": true,
	"sort_order":   true,
	"is_active":    true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"business_name": true,
	"segment":       true,
	"email":         true,
	"is_active":     true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"is_active":  true,
}

// MarketPriceSortFields contains allowed sort fields for market price observations
var MarketPriceSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"supplier_name":       true,
	"invoice_date":        true,
	"product_name":        true,
	"unit_price_excl_vat": true,
	"unit_price_incl_vat": true,
}

// PricingRuleSortFields contains allowed sort fields for pricing rules
var PricingRuleSortFields = map[string]bool{
	"id":                     true,
	"created_at":             true,
	"updated_at":             true,
	"name":                   true,
	"segment":                true,
	"base_markup_percentage": true,
	"effective_from":         true,
	"is_active":              true,
}

// PriceListSortFields contains allowed sort fields for customer price lists
var PriceListSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"customer_id":      true,
	"effective_from":   true,
	"generated_at":     true,
	"status":           true,
	"total_products":   true,
	"total_list_value": true,
}
