package handler

import (
	"time"

	pricingapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PricingRuleHandler handles pricing rule API endpoints
type PricingRuleHandler struct {
	BaseHandler
	ruleService *pricingapp.RuleService
}

// NewPricingRuleHandler creates a new PricingRuleHandler
func NewPricingRuleHandler(ruleService *pricingapp.RuleService) *PricingRuleHandler {
	return &PricingRuleHandler{
		ruleService: ruleService,
	}
}

// SetEffectiveUntilRequest represents a request to close a rule's validity window
type SetEffectiveUntilRequest struct {
	EffectiveUntil time.Time `json:"effective_until" binding:"required"`
}

// Create creates a new pricing rule for a customer segment
func (h *PricingRuleHandler) Create(c *gin.Context) {
	var req pricingapp.CreatePricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = getOptionalUserID(c)

	rule, err := h.ruleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rule)
}

// GetByID retrieves a pricing rule by its ID
func (h *PricingRuleHandler) GetByID(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, err := h.ruleService.GetByID(c.Request.Context(), ruleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// List retrieves a paginated list of pricing rules with optional filtering
func (h *PricingRuleHandler) List(c *gin.Context) {
	var filter pricingapp.RuleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	rules, total, err := h.ruleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, rules, total, filter.Page, filter.PageSize)
}

// Resolve returns the rule that would price a segment at a given moment
func (h *PricingRuleHandler) Resolve(c *gin.Context) {
	segment, err := parseSegment(c.Query("segment"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of timestamp, expected RFC3339")
			return
		}
		asOf = parsed
	}

	rule, err := h.ruleService.ResolveEffectiveRule(c.Request.Context(), segment, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pricingapp.ToPricingRuleResponse(rule))
}

// UpdateAdjustments retunes a rule's volatility, trend, seasonal and
// category adjustments
func (h *PricingRuleHandler) UpdateAdjustments(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	var req pricingapp.UpdateAdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.UpdateAdjustments(c.Request.Context(), ruleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// SetEffectiveUntil closes a rule's validity window
func (h *PricingRuleHandler) SetEffectiveUntil(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	var req SetEffectiveUntilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.SetEffectiveUntil(c.Request.Context(), ruleID, req.EffectiveUntil)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// Deactivate takes a pricing rule out of rotation
func (h *PricingRuleHandler) Deactivate(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, err := h.ruleService.Deactivate(c.Request.Context(), ruleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}
