package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// LeaderboardHandler serves leaderboard snapshots.
type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

// NewLeaderboardHandler constructs a LeaderboardHandler.
func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GET /api/leaderboard/:period
func (h *LeaderboardHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", services.DefaultLeaderboardSize)

	entries, err := h.leaderboard.List(requestContext(c), c.Param("period"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	response.SuccessWithMeta(c, http.StatusOK, entries, snapshotMeta(c.Param("period"), entries, limit))
}

// POST /api/admin/leaderboard/:period/rebuild
func (h *LeaderboardHandler) Rebuild(c *gin.Context) {
	entries, err := h.leaderboard.Rebuild(requestContext(c), c.Param("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, entries, snapshotMeta(c.Param("period"), entries, len(entries)))
}

func snapshotMeta(period string, entries []models.LeaderboardEntry, limit int) *response.Meta {
	meta := &response.Meta{Limit: limit, Total: len(entries), Period: period}
	if len(entries) > 0 {
		meta.Period = entries[0].Period
		calculatedAt := entries[0].CalculatedAt
		meta.CalculatedAt = &calculatedAt
	}
	return meta
}
