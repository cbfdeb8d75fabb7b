package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chaitanyahoon/bestguess-delta/services"
)

// HealthHandler serves the monitoring endpoints. Room and player counts
// are diagnostics only and never part of game flow.
type HealthHandler struct {
	registry  *services.RoomRegistry
	startedAt time.Time
}

func NewHealthHandler(registry *services.RoomRegistry) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		startedAt: time.Now(),
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"uptime":    time.Since(h.startedAt).Seconds(),
		"timestamp": time.Now().UnixMilli(),
		"rooms":     h.registry.RoomCount(),
		"players":   h.registry.PlayerCount(),
	})
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "BestGuess API is running"})
}
