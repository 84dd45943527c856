package approuters

import (
	"Medilink/internal/configuration"

	"github.com/gin-gonic/gin"
)

func UserRouters(router *gin.Engine, container *configuration.Container) {
	userRoute := router.Group("/api/user")
	{
		userRoute.POST("/login", container.AuthHandler.LoginPatient)
		userRoute.POST("/register", container.AuthHandler.Register)
		userRoute.GET("/info/:email", container.UserHandler.Info)
		userRoute.GET("/me", container.TokenManager.RequireAuth(), container.UserHandler.Me)
	}

	doctorRoute := router.Group("/api/doctor")
	{
		doctorRoute.POST("/login", container.AuthHandler.LoginDoctor)
		doctorRoute.GET("/me", container.TokenManager.RequireAuth(), container.UserHandler.Me)
	}
}
