package partner

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// CustomerSegment classifies a customer for pricing purposes. Each pricing
// rule targets exactly one segment.
type CustomerSegment string

const (
	SegmentPremium   CustomerSegment = "premium"
	SegmentStandard  CustomerSegment = "standard"
	SegmentBudget    CustomerSegment = "budget"
	SegmentWholesale CustomerSegment = "wholesale"
	SegmentRetail    CustomerSegment = "retail"
)

// ValidSegments lists all recognized customer segments
var ValidSegments = []CustomerSegment{
	SegmentPremium,
	SegmentStandard,
	SegmentBudget,
	SegmentWholesale,
	SegmentRetail,
}

// IsValid returns true if the segment is a recognized value
func (s CustomerSegment) IsValid() bool {
	for _, valid := range ValidSegments {
		if s == valid {
			return true
		}
	}
	return false
}

// Customer represents a buying customer (restaurant, retailer, private buyer)
type Customer struct {
	shared.BaseAggregateRoot
	Name         string          `gorm:"type:varchar(200);not null"`
	BusinessName string          `gorm:"type:varchar(200)"`
	Segment      CustomerSegment `gorm:"type:varchar(20);not null;default:'standard';index"`
	Email        string          `gorm:"type:varchar(254)"`
	Phone        string          `gorm:"type:varchar(30)"`
	DeliveryNote string          `gorm:"type:text"`
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer in the given segment
func NewCustomer(name string, segment CustomerSegment) (*Customer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if !segment.IsValid() {
		return nil, shared.NewDomainError("INVALID_SEGMENT", "Unknown customer segment: "+string(segment))
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Segment:           segment,
		IsActive:          true,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// ChangeSegment moves the customer to a different pricing segment
func (c *Customer) ChangeSegment(segment CustomerSegment) error {
	if !segment.IsValid() {
		return shared.NewDomainError("INVALID_SEGMENT", "Unknown customer segment: "+string(segment))
	}
	if c.Segment == segment {
		return nil
	}

	old := c.Segment
	c.Segment = segment
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerSegmentChangedEvent(c, old, segment))

	return nil
}

// UpdateContact updates the customer's contact details
func (c *Customer) UpdateContact(email, phone string) {
	c.Email = email
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}

	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}

	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
