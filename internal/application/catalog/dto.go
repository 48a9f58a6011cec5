package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/catalog"
)

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code        string           `json:"code" binding:"required,min=1,max=50"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Unit        string           `json:"unit" binding:"required,max=20"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	SortOrder   *int             `json:"sort_order"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	SortOrder   *int             `json:"sort_order"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Unit        string          `json:"unit"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Status      string          `json:"status"`
	SortOrder   int             `json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=active inactive discontinued"`
	CategoryID *uuid.UUID `form:"category_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Code:        product.Code,
		Name:        product.Name,
		Description: product.Description,
		CategoryID:  product.CategoryID,
		Unit:        product.Unit,
		BasePrice:   product.BasePrice,
		Status:      string(product.Status),
		SortOrder:   product.SortOrder,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
		Version:     product.Version,
	}
}

// ToProductResponses converts a slice of products to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses
}

// =============================================================================
// Category DTOs
// =============================================================================

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	DisplayName string `json:"display_name" binding:"max=100"`
	Description string `json:"description"`
	IsPremium   bool   `json:"is_premium"`
	IsSeasonal  bool   `json:"is_seasonal"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsPremium   *bool   `json:"is_premium"`
	IsSeasonal  *bool   `json:"is_seasonal"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	IsPremium   bool      `json:"is_premium"`
	IsSeasonal  bool      `json:"is_seasonal"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to a response DTO
func ToCategoryResponse(category *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		DisplayName: category.DisplayName,
		Description: category.Description,
		IsPremium:   category.IsPremium,
		IsSeasonal:  category.IsSeasonal,
		SortOrder:   category.SortOrder,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories to response DTOs
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, ToCategoryResponse(&categories[i]))
	}
	return responses
}
