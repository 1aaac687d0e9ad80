package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/handlers"
	"github.com/gamehaqqs/gamehaqqs/internal/middleware"
)

func registerAuthRoutes(group *gin.RouterGroup, handler *handlers.AuthHandler) {
	group.Use(middleware.RateLimit(authRateLimit, authRateWindow))
	{
		group.POST("/register", handler.Register)
		group.POST("/login", handler.Login)
	}
}

func registerProfileRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	me := api.Group("/me")
	{
		me.GET("", handler.Me)
		me.GET("/achievements", handler.MyAchievements)
	}
}
