package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindBySegment(ctx context.Context, segment partner.CustomerSegment, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, segment, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a customer with contact details", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)

		repo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

		response, err := service.Create(ctx, CreateCustomerRequest{
			Name:         "Mugg & Bean Centurion",
			BusinessName: "Mugg & Bean (Pty) Ltd",
			Segment:      "standard",
			Email:        "orders@muggandbean.example",
			Phone:        "+27 12 555 0100",
		})

		require.NoError(t, err)
		assert.Equal(t, "standard", response.Segment)
		assert.Equal(t, "Mugg & Bean (Pty) Ltd", response.BusinessName)
		assert.True(t, response.IsActive)
	})

	t.Run("rejects unknown segment", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		service := NewCustomerService(repo)

		_, err := service.Create(ctx, CreateCustomerRequest{
			Name:    "Corner Cafe",
			Segment: "platinum",
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_ChangeSegment(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCustomerRepository)
	service := NewCustomerService(repo)

	customer, err := partner.NewCustomer("Corner Cafe", partner.SegmentBudget)
	require.NoError(t, err)

	repo.On("FindByID", ctx, customer.ID).Return(customer, nil)
	repo.On("Save", ctx, customer).Return(nil)

	response, err := service.ChangeSegment(ctx, customer.ID, ChangeSegmentRequest{Segment: "premium"})

	require.NoError(t, err)
	assert.Equal(t, "premium", response.Segment)
	repo.AssertExpectations(t)
}

func TestCustomerService_Deactivate(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCustomerRepository)
	service := NewCustomerService(repo)

	customer, err := partner.NewCustomer("Corner Cafe", partner.SegmentBudget)
	require.NoError(t, err)

	repo.On("FindByID", ctx, customer.ID).Return(customer, nil)
	repo.On("Save", ctx, customer).Return(nil)

	response, err := service.Deactivate(ctx, customer.ID)

	require.NoError(t, err)
	assert.False(t, response.IsActive)

	// Deactivating twice is a domain error.
	_, err = service.Deactivate(ctx, customer.ID)
	assert.Error(t, err)
}
