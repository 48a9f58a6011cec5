package pricing

import (
	"context"
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingRuleRepository defines the interface for pricing rule persistence
type PricingRuleRepository interface {
	// FindByID finds a rule by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PricingRule, error)

	// FindByName finds a rule by its unique name
	FindByName(ctx context.Context, name string) (*PricingRule, error)

	// FindEffectiveBySegment returns all rules for a segment that are active
	// and effective as of the given date, ordered by created_at descending so
	// the caller can apply the most-recently-created tie-break.
	FindEffectiveBySegment(ctx context.Context, segment partner.CustomerSegment, asOf time.Time) ([]PricingRule, error)

	// FindAll finds all rules matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PricingRule, error)

	// Save creates or updates a rule
	Save(ctx context.Context, rule *PricingRule) error

	// Count counts rules matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CustomerPriceListRepository defines the interface for price list persistence
type CustomerPriceListRepository interface {
	// FindByID finds a price list (with its items) by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerPriceList, error)

	// FindByCustomerAndCycle finds the list generated for a customer with the
	// given effective-from date. Returns shared.ErrNotFound when the cycle
	// has not been generated yet.
	FindByCustomerAndCycle(ctx context.Context, customerID uuid.UUID, effectiveFrom time.Time) (*CustomerPriceList, error)

	// FindByCustomer returns the customer's lists, newest cycle first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]CustomerPriceList, error)

	// FindPreviousItemPrice returns the incl-VAT customer price of the most
	// recent prior item for the customer+product, from any list with an
	// effective-from date strictly before the given date. Returns (nil, nil)
	// when the product has never been priced for this customer.
	FindPreviousItemPrice(ctx context.Context, customerID, productID uuid.UUID, before time.Time) (*decimal.Decimal, error)

	// Save persists a price list together with its items
	Save(ctx context.Context, list *CustomerPriceList) error

	// Delete removes a price list and, via cascade, its items
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts price lists matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
