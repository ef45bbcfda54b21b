package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/terasky/vendorgraph"
	"github.com/terasky/vendorgraph/pkg/ingest"
	"github.com/terasky/vendorgraph/pkg/server/dto"
)

// IngestHandler handles document ingestion and graph maintenance.
type IngestHandler struct {
	engine vendorgraph.Engine
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(engine vendorgraph.Engine) *IngestHandler {
	return &IngestHandler{engine: engine}
}

// AddDocument handles POST /ingest/documents.
func (h *IngestHandler) AddDocument(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	err := h.engine.Ingest(c.Request.Context(), ingest.SourceDocument{
		SourceID: req.SourceID,
		Vendor:   req.Vendor,
		Products: req.Products,
		Types:    req.Types,
		Date:     date,
		Text:     req.Text,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "ingest_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// ImportAll handles POST /ingest/import. Rebuilds the graph from the
// vector store.
func (h *IngestHandler) ImportAll(c *gin.Context) {
	count, err := h.engine.ImportAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "import_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok", Count: count})
}

// Reconcile handles POST /ingest/reconcile.
func (h *IngestHandler) Reconcile(c *gin.Context) {
	removed, err := h.engine.Reconcile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "reconcile_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok", Count: removed})
}

// Reset handles DELETE /ingest/graph.
func (h *IngestHandler) Reset(c *gin.Context) {
	if err := h.engine.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "reset_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok", Message: "graph cleared"})
}
