package pricing

import (
	"time"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypePricingRule       = "PricingRule"
	AggregateTypeCustomerPriceList = "CustomerPriceList"
)

// Event type constants
const (
	EventTypePricingRuleCreated     = "PricingRuleCreated"
	EventTypePricingRuleDeactivated = "PricingRuleDeactivated"
	EventTypePriceListGenerated     = "PriceListGenerated"
)

// PricingRuleCreatedEvent is published when a new rule version is authored
type PricingRuleCreatedEvent struct {
	shared.BaseDomainEvent
	RuleID        uuid.UUID               `json:"rule_id"`
	Name          string                  `json:"name"`
	Segment       partner.CustomerSegment `json:"segment"`
	EffectiveFrom time.Time               `json:"effective_from"`
}

// NewPricingRuleCreatedEvent creates a new PricingRuleCreatedEvent
func NewPricingRuleCreatedEvent(rule *PricingRule) *PricingRuleCreatedEvent {
	return &PricingRuleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePricingRuleCreated, AggregateTypePricingRule, rule.ID),
		RuleID:          rule.ID,
		Name:            rule.Name,
		Segment:         rule.Segment,
		EffectiveFrom:   rule.EffectiveFrom,
	}
}

// PricingRuleDeactivatedEvent is published when a rule is taken out of service
type PricingRuleDeactivatedEvent struct {
	shared.BaseDomainEvent
	RuleID uuid.UUID `json:"rule_id"`
	Name   string    `json:"name"`
}

// NewPricingRuleDeactivatedEvent creates a new PricingRuleDeactivatedEvent
func NewPricingRuleDeactivatedEvent(rule *PricingRule) *PricingRuleDeactivatedEvent {
	return &PricingRuleDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePricingRuleDeactivated, AggregateTypePricingRule, rule.ID),
		RuleID:          rule.ID,
		Name:            rule.Name,
	}
}

// PriceListGeneratedEvent is published when a new cycle's list is created
type PriceListGeneratedEvent struct {
	shared.BaseDomainEvent
	PriceListID   uuid.UUID `json:"price_list_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	PricingRuleID uuid.UUID `json:"pricing_rule_id"`
	EffectiveFrom time.Time `json:"effective_from"`
}

// NewPriceListGeneratedEvent creates a new PriceListGeneratedEvent
func NewPriceListGeneratedEvent(list *CustomerPriceList) *PriceListGeneratedEvent {
	return &PriceListGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePriceListGenerated, AggregateTypeCustomerPriceList, list.ID),
		PriceListID:   list.ID,
		CustomerID:    list.CustomerID,
		PricingRuleID: list.PricingRuleID,
		EffectiveFrom: list.EffectiveFrom,
	}
}
