package pricing

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceListStatus tracks the stored lifecycle of a price list. Transitions
// are one-directional: draft → active → sent → acknowledged. Expiry is a
// derived property of the effective window, never a stored write.
type PriceListStatus string

const (
	PriceListStatusDraft        PriceListStatus = "draft"
	PriceListStatusActive       PriceListStatus = "active"
	PriceListStatusSent         PriceListStatus = "sent"
	PriceListStatusAcknowledged PriceListStatus = "acknowledged"
	PriceListStatusExpired      PriceListStatus = "expired" // derived only
)

// CustomerPriceList is the generated, time-boxed price sheet for one
// customer and one pricing cycle. It exclusively owns its items; the
// aggregate stats are always a fold over the complete item set.
//
// One list per customer per cycle: (customer_id, effective_from) is unique
// at the storage layer, and a conflict means "already generated".
type CustomerPriceList struct {
	shared.AuditedAggregateRoot
	CustomerID              uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_price_list_cycle,priority:1"`
	PricingRuleID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	Name                    string                  `gorm:"type:varchar(200);not null"`
	EffectiveFrom           time.Time               `gorm:"type:date;not null;uniqueIndex:idx_price_list_cycle,priority:2"`
	EffectiveUntil          *time.Time              `gorm:"type:date"`
	GeneratedAt             time.Time               `gorm:"not null"`
	MarketDataDate          time.Time               `gorm:"type:date;not null"`
	MarketDataSource        string                  `gorm:"type:varchar(200)"`
	Status                  PriceListStatus         `gorm:"type:varchar(20);not null;default:'draft'"`
	TotalProducts           int                     `gorm:"not null;default:0"`
	AverageMarkupPercentage decimal.Decimal         `gorm:"type:decimal(8,2);not null;default:0"`
	TotalListValue          decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	Items                   []CustomerPriceListItem `gorm:"foreignKey:PriceListID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CustomerPriceList) TableName() string {
	return "customer_price_lists"
}

// NewCustomerPriceList creates a new draft price list for one cycle
func NewCustomerPriceList(
	customerID, pricingRuleID uuid.UUID,
	name string,
	effectiveFrom time.Time,
	effectiveUntil *time.Time,
	marketDataDate time.Time,
	marketDataSource string,
	generatedBy *uuid.UUID,
) (*CustomerPriceList, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if pricingRuleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RULE", "Pricing rule is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Price list name cannot be empty")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Effective from date is required")
	}
	if effectiveUntil != nil && effectiveUntil.Before(effectiveFrom) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Effective until cannot precede effective from")
	}

	list := &CustomerPriceList{
		AuditedAggregateRoot:    shared.NewAuditedAggregateRoot(generatedBy),
		CustomerID:              customerID,
		PricingRuleID:           pricingRuleID,
		Name:                    name,
		EffectiveFrom:           truncateToDate(effectiveFrom),
		GeneratedAt:             time.Now(),
		MarketDataDate:          truncateToDate(marketDataDate),
		MarketDataSource:        marketDataSource,
		Status:                  PriceListStatusDraft,
		AverageMarkupPercentage: decimal.Zero,
		TotalListValue:          decimal.Zero,
		Items:                   make([]CustomerPriceListItem, 0),
	}
	if effectiveUntil != nil {
		until := truncateToDate(*effectiveUntil)
		list.EffectiveUntil = &until
	}

	list.AddDomainEvent(NewPriceListGeneratedEvent(list))

	return list, nil
}

// AddItem appends a product line. Each product appears at most once per list.
func (l *CustomerPriceList) AddItem(item *CustomerPriceListItem) error {
	if item == nil {
		return shared.NewDomainError("INVALID_ITEM", "Price list item cannot be nil")
	}
	for _, existing := range l.Items {
		if existing.ProductID == item.ProductID {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Product already has a line on this price list")
		}
	}

	item.PriceListID = l.ID
	l.Items = append(l.Items, *item)

	return nil
}

// RecomputeAggregates folds the complete item set into the stored stats.
// It must run after all items for the cycle have been added; the stats are
// never maintained incrementally, so a partial fold cannot drift in.
func (l *CustomerPriceList) RecomputeAggregates() {
	l.TotalProducts = len(l.Items)

	if len(l.Items) == 0 {
		l.AverageMarkupPercentage = decimal.Zero
		l.TotalListValue = decimal.Zero
		return
	}

	markupSum := decimal.Zero
	valueSum := decimal.Zero
	for _, item := range l.Items {
		markupSum = markupSum.Add(item.MarkupPercentage)
		valueSum = valueSum.Add(item.CustomerPriceInclVAT)
	}

	l.AverageMarkupPercentage = markupSum.Div(decimal.NewFromInt(int64(len(l.Items)))).Round(2)
	l.TotalListValue = valueSum.Round(2)
}

// Activate publishes the draft list
func (l *CustomerPriceList) Activate() error {
	if l.Status != PriceListStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only a draft price list can be activated")
	}

	l.Status = PriceListStatusActive
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// MarkSent records that the list was delivered to the customer
func (l *CustomerPriceList) MarkSent() error {
	if l.Status != PriceListStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only an active price list can be marked sent")
	}

	l.Status = PriceListStatusSent
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Acknowledge records the customer's confirmation
func (l *CustomerPriceList) Acknowledge() error {
	if l.Status != PriceListStatusSent {
		return shared.NewDomainError("INVALID_STATE", "Only a sent price list can be acknowledged")
	}

	l.Status = PriceListStatusAcknowledged
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// IsExpired reports whether the effective window has passed
func (l *CustomerPriceList) IsExpired(asOf time.Time) bool {
	return l.EffectiveUntil != nil && truncateToDate(asOf).After(truncateToDate(*l.EffectiveUntil))
}

// EffectiveStatus returns the stored status, or "expired" once the
// effective window has passed
func (l *CustomerPriceList) EffectiveStatus(asOf time.Time) PriceListStatus {
	if l.IsExpired(asOf) {
		return PriceListStatusExpired
	}
	return l.Status
}
