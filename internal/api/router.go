package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/app"
	iauth "github.com/gamehaqqs/gamehaqqs/internal/auth"
	"github.com/gamehaqqs/gamehaqqs/internal/handlers"
	"github.com/gamehaqqs/gamehaqqs/internal/middleware"
	"github.com/gamehaqqs/gamehaqqs/internal/monitoring"
	"github.com/gamehaqqs/gamehaqqs/internal/monitoring/checks"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
)

const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

// NewRouter builds the Gin engine, wires middleware and registers every route. hub may be nil,
// in which case the notification stream answers 404. readiness adds probes beyond the database
// and leaderboard checks registered by default.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svc *services.Container, hub *notifications.Hub, readiness ...monitoring.Check) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svc == nil {
		return nil, fmt.Errorf("services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins...))

	health := monitoring.NewHealthManager()
	health.RegisterReadiness(checks.Database(db, 0))
	health.RegisterReadiness(checks.Leaderboard(monitoring.Rebuilds, 0))
	for _, check := range readiness {
		health.RegisterReadiness(check)
	}
	registerHealthRoutes(r, health, cfg)

	authHandler := handlers.NewAuthHandler(svc.Users, jwt)
	registerAuthRoutes(r.Group("/api/auth"), authHandler)

	api := r.Group("/api")

	// Public reads
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.Leaderboard)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Achievements)
	api.GET("/leaderboard/:period", leaderboardHandler.List)
	api.GET("/users/:id/achievements", userHandler.Achievements)

	protected := api.Group("")
	protected.Use(middleware.Auth(jwt, svc.Users))

	registerProfileRoutes(protected, userHandler)
	registerContentRoutes(protected, handlers.NewContentHandler(svc.Activity))
	registerNotificationRoutes(protected, handlers.NewNotificationHandler(svc.Notifications, hub))
	registerAdminRoutes(protected.Group("/admin"),
		handlers.NewAdminHandler(svc.Achievements, svc.Leveling, svc.Users),
		leaderboardHandler,
	)

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
