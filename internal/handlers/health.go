package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/monitoring"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// HealthHandler exposes the probe manager over HTTP.
type HealthHandler struct {
	manager *monitoring.HealthManager
}

// NewHealthHandler constructs a health handler.
func NewHealthHandler(manager *monitoring.HealthManager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.write(c, h.manager.Evaluate)
}

// GET /health/live
func (h *HealthHandler) Liveness(c *gin.Context) {
	h.write(c, h.manager.EvaluateLiveness)
}

// GET /health/ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	h.write(c, h.manager.EvaluateReadiness)
}

// write answers 503 only when a probe is down; a degraded optional dependency still serves.
func (h *HealthHandler) write(c *gin.Context, evaluate func(context.Context) monitoring.HealthReport) {
	report := evaluate(requestContext(c))
	status := http.StatusOK
	if report.Status == monitoring.StatusDown {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}
