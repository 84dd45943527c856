package approuters

import (
	"Medilink/internal/configuration"

	"github.com/gin-gonic/gin"
)

func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/api/messages", container.TokenManager.RequireAuth())
	{
		messageRoute.POST("/send", container.MessageHandler.Send)
		messageRoute.GET("/history", container.MessageHandler.History)
		messageRoute.GET("/conversations", container.MessageHandler.Conversations)
		messageRoute.GET("/attachment/:id", container.MessageHandler.DownloadAttachment)
	}
}
