package handler

import (
	"context"

	pricingapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PriceListHandler handles customer price list API endpoints
type PriceListHandler struct {
	BaseHandler
	priceListService *pricingapp.PriceListService
}

// NewPriceListHandler creates a new PriceListHandler
func NewPriceListHandler(priceListService *pricingapp.PriceListService) *PriceListHandler {
	return &PriceListHandler{
		priceListService: priceListService,
	}
}

// Generate produces one customer's price list for a cycle from the latest
// market data and the segment's effective pricing rule
func (h *PriceListHandler) Generate(c *gin.Context) {
	var req pricingapp.GeneratePriceListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.GeneratedBy = getOptionalUserID(c)

	list, err := h.priceListService.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, list)
}

// BatchGenerate produces price lists for all active customers in one pass
func (h *PriceListHandler) BatchGenerate(c *gin.Context) {
	var req pricingapp.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.GeneratedBy = getOptionalUserID(c)

	result, err := h.priceListService.BatchGenerate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID retrieves a price list with its items
func (h *PriceListHandler) GetByID(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price list ID format")
		return
	}

	list, err := h.priceListService.GetByID(c.Request.Context(), listID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, list)
}

// ListByCustomer retrieves a customer's price list history, newest first
func (h *PriceListHandler) ListByCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var filter pricingapp.PriceListListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lists, err := h.priceListService.ListByCustomer(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lists)
}

// Activate moves a draft price list to active
func (h *PriceListHandler) Activate(c *gin.Context) {
	h.transition(c, h.priceListService.Activate)
}

// MarkSent records that an active price list was delivered to the customer
func (h *PriceListHandler) MarkSent(c *gin.Context) {
	h.transition(c, h.priceListService.MarkSent)
}

// Acknowledge records the customer's confirmation of a sent price list
func (h *PriceListHandler) Acknowledge(c *gin.Context) {
	h.transition(c, h.priceListService.Acknowledge)
}

// Delete removes a draft price list
func (h *PriceListHandler) Delete(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price list ID format")
		return
	}

	if err := h.priceListService.Delete(c.Request.Context(), listID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *PriceListHandler) transition(c *gin.Context, apply func(ctx context.Context, listID uuid.UUID) (*pricingapp.PriceListResponse, error)) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price list ID format")
		return
	}

	list, err := apply(c.Request.Context(), listID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, list)
}
