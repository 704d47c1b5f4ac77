package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Health reports service and storage health
func (h *Handler) Health(c *gin.Context) {
	response := HealthResponse{Status: "ok", Storage: "connected"}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.Status = "degraded"
		response.Storage = "disconnected"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
