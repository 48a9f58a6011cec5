package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, partner.CustomerSegment(req.Segment))
	if err != nil {
		return nil, err
	}

	customer.BusinessName = req.BusinessName
	customer.DeliveryNote = req.DeliveryNote
	if req.Email != "" || req.Phone != "" {
		customer.UpdateContact(req.Email, req.Phone)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Segment != "" {
		domainFilter.Filters["segment"] = filter.Segment
	}
	if filter.Active != nil {
		domainFilter.Filters["is_active"] = *filter.Active
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer's contact details
func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil || req.Phone != nil {
		email := customer.Email
		phone := customer.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		customer.UpdateContact(email, phone)
	}
	if req.DeliveryNote != nil {
		customer.DeliveryNote = *req.DeliveryNote
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// ChangeSegment moves a customer to a different pricing segment. The next
// generated price list uses the new segment's rule; existing lists are
// untouched.
func (s *CustomerService) ChangeSegment(ctx context.Context, customerID uuid.UUID, req ChangeSegmentRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.ChangeSegment(partner.CustomerSegment(req.Segment)); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Activate activates a customer
func (s *CustomerService) Activate(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, customerID, (*partner.Customer).Activate)
}

// Deactivate deactivates a customer, excluding them from batch generation
func (s *CustomerService) Deactivate(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, customerID, (*partner.Customer).Deactivate)
}

func (s *CustomerService) transition(ctx context.Context, customerID uuid.UUID, apply func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := apply(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}
