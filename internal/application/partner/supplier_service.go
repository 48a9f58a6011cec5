package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
	}
}

// Create registers a new supplier
func (s *SupplierService) Create(ctx context.Context, name, contactPerson, email, phone string) (*SupplierResponse, error) {
	existing, err := s.supplierRepo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Supplier with this name already exists")
	}

	supplier, err := partner.NewSupplier(name)
	if err != nil {
		return nil, err
	}
	if contactPerson != "" || email != "" || phone != "" {
		supplier.UpdateContact(contactPerson, email, phone)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves all suppliers
func (s *SupplierService) List(ctx context.Context) ([]SupplierResponse, error) {
	suppliers, err := s.supplierRepo.FindAll(ctx, shared.Filter{OrderBy: "name", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}

	return ToSupplierResponses(suppliers), nil
}

// UpdateContact updates a supplier's contact details
func (s *SupplierService) UpdateContact(ctx context.Context, supplierID uuid.UUID, contactPerson, email, phone string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	supplier.UpdateContact(contactPerson, email, phone)

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}
