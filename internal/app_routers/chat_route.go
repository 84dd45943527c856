package approuters

import (
	"Medilink/internal/configuration"

	"github.com/gin-gonic/gin"
)

// ChatRouters sets up hub monitoring routes. Stats require a valid token:
// the online list is a list of account emails.
func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/api/chat", container.TokenManager.RequireAuth())
	{
		chatRoute.GET("/stats", container.StatsHandler.GetStats)
	}
}
