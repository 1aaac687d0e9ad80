package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// UserHandler serves profile and achievement-status reads.
type UserHandler struct {
	users        *services.UserService
	achievements *services.AchievementService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService, achievements *services.AchievementService) *UserHandler {
	return &UserHandler{users: users, achievements: achievements}
}

// GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/me/achievements
func (h *UserHandler) MyAchievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.writeAchievements(c, userID)
}

// GET /api/users/:id/achievements
func (h *UserHandler) Achievements(c *gin.Context) {
	h.writeAchievements(c, strings.TrimSpace(c.Param("id")))
}

func (h *UserHandler) writeAchievements(c *gin.Context, userID string) {
	statuses, err := h.achievements.GetUserAchievements(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, statuses, &response.Meta{Total: len(statuses)})
}
