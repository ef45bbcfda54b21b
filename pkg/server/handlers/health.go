// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terasky/vendorgraph"
)

// HealthHandler handles health and readiness probes.
type HealthHandler struct {
	engine vendorgraph.Engine
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(engine vendorgraph.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// LivenessCheck handles GET /live.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// ReadinessCheck handles GET /ready. The engine is ready when the graph
// answers a stats query.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if _, err := h.engine.Stats(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
