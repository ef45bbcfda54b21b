package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terasky/vendorgraph"
	"github.com/terasky/vendorgraph/pkg/server/dto"
	"github.com/terasky/vendorgraph/pkg/types"
)

// SearchHandler handles retrieval requests.
type SearchHandler struct {
	engine vendorgraph.Engine
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(engine vendorgraph.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Search handles POST /search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	results, err := h.engine.Search(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "search_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExtractParams handles GET /search/params. Exposes filter extraction for
// debugging queries that match unexpectedly.
func (h *SearchHandler) ExtractParams(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "q parameter is required"})
		return
	}
	c.JSON(http.StatusOK, h.engine.ExtractParams(query))
}

// VendorProducts handles GET /vendors/:vendor/products.
func (h *SearchHandler) VendorProducts(c *gin.Context) {
	vendor := c.Param("vendor")

	min := types.ConfidenceMedium
	if s := c.Query("min_confidence"); s != "" {
		min = types.ParseConfidence(s)
		if min == types.ConfidenceNone {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "min_confidence must be low, medium or high"})
			return
		}
	}

	products, err := h.engine.VendorProductsByConfidence(c.Request.Context(), vendor, min)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "lookup_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor, "products": products})
}

// Stats handles GET /stats.
func (h *SearchHandler) Stats(c *gin.Context) {
	stats, err := h.engine.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "stats_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
