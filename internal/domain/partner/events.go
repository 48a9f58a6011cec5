package partner

import (
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCustomer = "Customer"
	AggregateTypeSupplier = "Supplier"
)

// Event type constants
const (
	EventTypeCustomerCreated        = "CustomerCreated"
	EventTypeCustomerSegmentChanged = "CustomerSegmentChanged"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID       `json:"customer_id"`
	Name       string          `json:"name"`
	Segment    CustomerSegment `json:"segment"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Name:            customer.Name,
		Segment:         customer.Segment,
	}
}

// CustomerSegmentChangedEvent is published when a customer moves segments.
// Downstream pricing cycles pick up the new segment at the next generation.
type CustomerSegmentChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID       `json:"customer_id"`
	OldSegment CustomerSegment `json:"old_segment"`
	NewSegment CustomerSegment `json:"new_segment"`
}

// NewCustomerSegmentChangedEvent creates a new CustomerSegmentChangedEvent
func NewCustomerSegmentChangedEvent(customer *Customer, oldSegment, newSegment CustomerSegment) *CustomerSegmentChangedEvent {
	return &CustomerSegmentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerSegmentChanged, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldSegment:      oldSegment,
		NewSegment:      newSegment,
	}
}
