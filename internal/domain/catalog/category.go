package catalog

import (
	"strings"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// Category represents a produce department (e.g. vegetables, fruit, herbs).
// Category names are matched case-insensitively against pricing rule
// category adjustments, so the canonical form is always lowercase.
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	IsPremium   bool   `gorm:"not null;default:false"` // Premium departments flag generated price list items
	IsSeasonal  bool   `gorm:"not null;default:false"` // Seasonal departments flag generated price list items
	SortOrder   int    `gorm:"not null;default:0"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category. The name is normalized to lowercase.
func NewCategory(name, displayName string) (*Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(normalized) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if displayName == "" {
		displayName = normalized
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              normalized,
		DisplayName:       displayName,
		IsActive:          true,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// SetClassification sets the premium/seasonal flags for the department
func (c *Category) SetClassification(premium, seasonal bool) {
	c.IsPremium = premium
	c.IsSeasonal = seasonal
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Update updates the category's display information
func (c *Category) Update(displayName, description string) error {
	if displayName == "" {
		return shared.NewDomainError("INVALID_NAME", "Display name cannot be empty")
	}

	c.DisplayName = displayName
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate deactivates the category
func (c *Category) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}

	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate activates the category
func (c *Category) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Category is already active")
	}

	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
