package handler

import (
	"net/http"

	"Medilink/internal/hub"

	"github.com/gin-gonic/gin"
)

// StatsHandler exposes hub statistics for operations.
type StatsHandler interface {
	GetStats(c *gin.Context)
}

type statsHandler struct {
	hub *hub.Hub
}

func NewStatsHandler(h *hub.Hub) StatsHandler {
	return &statsHandler{hub: h}
}

func (h *statsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.hub.Stats(),
	})
}
