package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/catalog"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	existing, err := s.categoryRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}

	category, err := catalog.NewCategory(req.Name, req.DisplayName)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := category.Update(category.DisplayName, req.Description); err != nil {
			return nil, err
		}
	}
	category.SetClassification(req.IsPremium, req.IsSeasonal)

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, categoryID uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves all categories
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{OrderBy: "sort_order", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}

	return ToCategoryResponses(categories), nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil || req.Description != nil {
		displayName := category.DisplayName
		description := category.Description
		if req.DisplayName != nil {
			displayName = *req.DisplayName
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := category.Update(displayName, description); err != nil {
			return nil, err
		}
	}

	if req.IsPremium != nil || req.IsSeasonal != nil {
		premium := category.IsPremium
		seasonal := category.IsSeasonal
		if req.IsPremium != nil {
			premium = *req.IsPremium
		}
		if req.IsSeasonal != nil {
			seasonal = *req.IsSeasonal
		}
		category.SetClassification(premium, seasonal)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete removes a category. Categories with products cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return err
	}

	count, err := s.productRepo.Count(ctx, shared.Filter{
		Filters: map[string]any{"category_id": categoryID},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CANNOT_DELETE", "Cannot delete a category that still has products")
	}

	return s.categoryRepo.Delete(ctx, categoryID)
}
