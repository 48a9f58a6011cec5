package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	BusinessName string `json:"business_name" binding:"max=200"`
	Segment      string `json:"segment" binding:"required,oneof=premium standard budget wholesale retail"`
	Email        string `json:"email" binding:"omitempty,email,max=254"`
	Phone        string `json:"phone" binding:"max=30"`
	DeliveryNote string `json:"delivery_note"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Email        *string `json:"email" binding:"omitempty,email,max=254"`
	Phone        *string `json:"phone" binding:"omitempty,max=30"`
	DeliveryNote *string `json:"delivery_note"`
}

// ChangeSegmentRequest represents a request to move a customer between
// pricing segments
type ChangeSegmentRequest struct {
	Segment string `json:"segment" binding:"required,oneof=premium standard budget wholesale retail"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BusinessName string    `json:"business_name"`
	Segment      string    `json:"segment"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	DeliveryNote string    `json:"delivery_note"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Segment  string `form:"segment" binding:"omitempty,oneof=premium standard budget wholesale retail"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID,
		Name:         customer.Name,
		BusinessName: customer.BusinessName,
		Segment:      string(customer.Segment),
		Email:        customer.Email,
		Phone:        customer.Phone,
		DeliveryNote: customer.DeliveryNote,
		IsActive:     customer.IsActive,
		CreatedAt:    customer.CreatedAt,
		UpdatedAt:    customer.UpdatedAt,
		Version:      customer.Version,
	}
}

// ToCustomerResponses converts a slice of customers to response DTOs
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}
	return responses
}

// =============================================================================
// Supplier DTOs
// =============================================================================

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToSupplierResponse converts a domain supplier to a response DTO
func ToSupplierResponse(supplier *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            supplier.ID,
		Name:          supplier.Name,
		ContactPerson: supplier.ContactPerson,
		Email:         supplier.Email,
		Phone:         supplier.Phone,
		IsActive:      supplier.IsActive,
		CreatedAt:     supplier.CreatedAt,
	}
}

// ToSupplierResponses converts a slice of suppliers to response DTOs
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		responses = append(responses, ToSupplierResponse(&suppliers[i]))
	}
	return responses
}
