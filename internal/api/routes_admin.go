package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/handlers"
	"github.com/gamehaqqs/gamehaqqs/internal/middleware"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
)

func registerAdminRoutes(admin *gin.RouterGroup, handler *handlers.AdminHandler, leaderboard *handlers.LeaderboardHandler) {
	staff := middleware.RequireRole(models.RoleModerator, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	admin.POST("/achievements/check/:id", staff, handler.CheckAchievements)

	admin.GET("/achievements", adminOnly, handler.ListAchievements)
	admin.POST("/achievements", adminOnly, handler.CreateAchievement)
	admin.POST("/leaderboard/:period/rebuild", adminOnly, leaderboard.Rebuild)
	admin.POST("/users/:id/xp", adminOnly, handler.AwardXP)
	admin.PATCH("/users/:id", adminOnly, handler.UpdateUser)
}
