package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamehaqqs/gamehaqqs/internal/app"
	"github.com/gamehaqqs/gamehaqqs/internal/handlers"
	"github.com/gamehaqqs/gamehaqqs/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, manager *monitoring.HealthManager, cfg *app.Config) {
	if cfg.Monitoring.Health.Enabled {
		health := handlers.NewHealthHandler(manager)
		r.GET("/health", health.Health)
		r.GET("/health/live", health.Liveness)
		r.GET("/health/ready", health.Readiness)
	} else {
		r.GET("/health", disabledHandler)
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}

func disabledHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}
