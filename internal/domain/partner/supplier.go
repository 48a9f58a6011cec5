package partner

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// Supplier represents a registered market price source (a market agent or
// farm). Market price observations carry a free-text supplier name; a
// Supplier record exists for the sources the business actually trades with.
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Email         string `gorm:"type:varchar(254)"`
	Phone         string `gorm:"type:varchar(30)"`
	IsActive      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name string) (*Supplier, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}

	supplier := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsActive:          true,
	}

	return supplier, nil
}

// UpdateContact updates the supplier's contact details
func (s *Supplier) UpdateContact(contactPerson, email, phone string) {
	s.ContactPerson = contactPerson
	s.Email = email
	s.Phone = phone
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	if !s.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}

	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}
