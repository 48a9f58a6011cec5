package handler

import (
	"time"

	marketapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/market"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MarketPriceHandler handles market price observation API endpoints
type MarketPriceHandler struct {
	BaseHandler
	marketService *marketapp.Service
}

// NewMarketPriceHandler creates a new MarketPriceHandler
func NewMarketPriceHandler(marketService *marketapp.Service) *MarketPriceHandler {
	return &MarketPriceHandler{
		marketService: marketService,
	}
}

// ImportRequest represents a bulk import of market price observations,
// typically one supplier invoice worth of lines
type ImportRequest struct {
	Observations []marketapp.RecordObservationRequest `json:"observations" binding:"required,min=1,dive"`
}

// Record records one market price observation
func (h *MarketPriceHandler) Record(c *gin.Context) {
	var req marketapp.RecordObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	observation, created, err := h.marketService.RecordObservation(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !created {
		// Duplicate of an existing observation, return it without re-recording
		h.Success(c, observation)
		return
	}

	h.Created(c, observation)
}

// Import records a batch of market price observations
func (h *MarketPriceHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.marketService.Import(c.Request.Context(), req.Observations)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Latest returns the freshest observation for a product, optionally as of
// a point in time
func (h *MarketPriceHandler) Latest(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	asOf, err := parseTimeQuery(c.Query("as_of"), time.Now())
	if err != nil {
		h.BadRequest(c, "Invalid as_of timestamp, expected RFC3339")
		return
	}

	observation, err := h.marketService.LatestPrice(c.Request.Context(), productID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, observation)
}

// History returns a product's observations within a date range
func (h *MarketPriceHandler) History(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	now := time.Now()
	from, err := parseTimeQuery(c.Query("from"), now.AddDate(0, 0, -30))
	if err != nil {
		h.BadRequest(c, "Invalid from timestamp, expected RFC3339")
		return
	}
	to, err := parseTimeQuery(c.Query("to"), now)
	if err != nil {
		h.BadRequest(c, "Invalid to timestamp, expected RFC3339")
		return
	}

	observations, err := h.marketService.History(c.Request.Context(), productID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, observations)
}

// Volatility classifies a product's recent price stability
func (h *MarketPriceHandler) Volatility(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	asOf, err := parseTimeQuery(c.Query("as_of"), time.Now())
	if err != nil {
		h.BadRequest(c, "Invalid as_of timestamp, expected RFC3339")
		return
	}

	volatility, err := h.marketService.ClassifyVolatility(c.Request.Context(), productID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, volatility)
}

// parseTimeQuery parses an RFC3339 query parameter, falling back to def
// when the parameter is absent
func parseTimeQuery(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	return time.Parse(time.RFC3339, raw)
}
