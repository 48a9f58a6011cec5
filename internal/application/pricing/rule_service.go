package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/shared"
)

// RuleService handles pricing rule business operations
type RuleService struct {
	ruleRepo pricing.PricingRuleRepository
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo pricing.PricingRuleRepository) *RuleService {
	return &RuleService{
		ruleRepo: ruleRepo,
	}
}

// Create creates a new pricing rule. Validation is fail-fast: the first
// invalid parameter aborts the whole creation and nothing is persisted.
func (s *RuleService) Create(ctx context.Context, req CreatePricingRuleRequest) (*PricingRuleResponse, error) {
	existing, err := s.ruleRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Pricing rule with this name already exists")
	}

	rule, err := pricing.NewPricingRule(
		req.Name,
		partner.CustomerSegment(req.Segment),
		req.BaseMarkupPercentage,
		req.MinimumMarginPercentage,
		req.EffectiveFrom,
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	trendMultiplier := rule.TrendMultiplier
	if req.TrendMultiplier != nil {
		trendMultiplier = *req.TrendMultiplier
	}
	if err := rule.SetAdjustments(req.VolatilityAdjustment, trendMultiplier, req.SeasonalAdjustment); err != nil {
		return nil, err
	}

	if len(req.CategoryAdjustments) > 0 {
		if err := rule.SetCategoryAdjustments(req.CategoryAdjustments); err != nil {
			return nil, err
		}
	}

	if req.EffectiveUntil != nil {
		if err := rule.SetEffectiveUntil(*req.EffectiveUntil); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToPricingRuleResponse(rule)
	return &response, nil
}

// GetByID retrieves a pricing rule by ID
func (s *RuleService) GetByID(ctx context.Context, ruleID uuid.UUID) (*PricingRuleResponse, error) {
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	response := ToPricingRuleResponse(rule)
	return &response, nil
}

// List retrieves pricing rules with filtering and pagination
func (s *RuleService) List(ctx context.Context, filter RuleListFilter) ([]PricingRuleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
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

	rules, err := s.ruleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ruleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPricingRuleResponses(rules), total, nil
}

// UpdateAdjustments retunes a rule's adjustment parameters
func (s *RuleService) UpdateAdjustments(ctx context.Context, ruleID uuid.UUID, req UpdateAdjustmentsRequest) (*PricingRuleResponse, error) {
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	volatility := rule.VolatilityAdjustment
	trend := rule.TrendMultiplier
	seasonal := rule.SeasonalAdjustment
	if req.VolatilityAdjustment != nil {
		volatility = *req.VolatilityAdjustment
	}
	if req.TrendMultiplier != nil {
		trend = *req.TrendMultiplier
	}
	if req.SeasonalAdjustment != nil {
		seasonal = *req.SeasonalAdjustment
	}
	if err := rule.SetAdjustments(volatility, trend, seasonal); err != nil {
		return nil, err
	}

	if req.CategoryAdjustments != nil {
		if err := rule.SetCategoryAdjustments(req.CategoryAdjustments); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToPricingRuleResponse(rule)
	return &response, nil
}

// SetEffectiveUntil closes a rule's effective window
func (s *RuleService) SetEffectiveUntil(ctx context.Context, ruleID uuid.UUID, until time.Time) (*PricingRuleResponse, error) {
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if err := rule.SetEffectiveUntil(until); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToPricingRuleResponse(rule)
	return &response, nil
}

// Deactivate takes a rule out of service
func (s *RuleService) Deactivate(ctx context.Context, ruleID uuid.UUID) (*PricingRuleResponse, error) {
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if err := rule.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToPricingRuleResponse(rule)
	return &response, nil
}

// ResolveEffectiveRule returns the rule to price a segment with on the given
// date. When several rules are simultaneously effective for the segment, the
// most recently created one wins. Returns shared.ErrNoEffectiveRule when no
// rule matches.
func (s *RuleService) ResolveEffectiveRule(ctx context.Context, segment partner.CustomerSegment, asOf time.Time) (*pricing.PricingRule, error) {
	rules, err := s.ruleRepo.FindEffectiveBySegment(ctx, segment, asOf)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, shared.ErrNoEffectiveRule
	}

	// Repository orders by created_at descending; the head is the winner.
	return &rules[0], nil
}
