package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// AdminHandler serves catalog management and manual gamification operations.
type AdminHandler struct {
	achievements *services.AchievementService
	leveling     *services.LevelingService
	users        *services.UserService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(achievements *services.AchievementService, leveling *services.LevelingService, users *services.UserService) *AdminHandler {
	return &AdminHandler{achievements: achievements, leveling: leveling, users: users}
}

type criteriaRequest struct {
	Type    string `json:"type" validate:"required"`
	Level   *int   `json:"level,omitempty" validate:"omitempty,min=1"`
	Count   *int   `json:"count,omitempty" validate:"omitempty,min=1"`
	MaxRank *int   `json:"max_rank,omitempty" validate:"omitempty,min=1"`
}

type createAchievementRequest struct {
	Key         string          `json:"key" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=120"`
	Description string          `json:"description" validate:"max=500"`
	Icon        string          `json:"icon" validate:"max=64"`
	Rarity      string          `json:"rarity" validate:"omitempty,oneof=Common Uncommon Rare Epic Legendary"`
	XPReward    int64           `json:"xp_reward" validate:"min=0"`
	Criteria    criteriaRequest `json:"criteria"`
	SortOrder   int             `json:"sort_order"`
}

type awardXPRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

type updateUserRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,role"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// GET /api/admin/achievements
func (h *AdminHandler) ListAchievements(c *gin.Context) {
	catalog, err := h.achievements.ListCatalog(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, catalog, &response.Meta{Total: len(catalog)})
}

// POST /api/admin/achievements
func (h *AdminHandler) CreateAchievement(c *gin.Context) {
	var req createAchievementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	achievement, err := h.achievements.CreateAchievement(requestContext(c), services.CreateAchievementInput{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Rarity:      req.Rarity,
		XPReward:    req.XPReward,
		Criteria: models.Criteria{
			Type:    req.Criteria.Type,
			Level:   req.Criteria.Level,
			Count:   req.Criteria.Count,
			MaxRank: req.Criteria.MaxRank,
		},
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, achievement)
}

// POST /api/admin/achievements/check/:id
func (h *AdminHandler) CheckAchievements(c *gin.Context) {
	unlocked, err := h.achievements.CheckAndUnlock(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil && len(unlocked) == 0 {
		response.Error(c, err)
		return
	}
	noteIncomplete(c, err)
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}
	response.Success(c, http.StatusOK, gin.H{"unlocked": unlocked})
}

// POST /api/admin/users/:id/xp
func (h *AdminHandler) AwardXP(c *gin.Context) {
	var req awardXPRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := requestContext(c)
	userID := strings.TrimSpace(c.Param("id"))

	user, err := h.leveling.AwardXP(ctx, userID, req.Amount)
	if user == nil {
		response.Error(c, err)
		return
	}

	unlocked, unlockErr := h.achievements.CheckAndUnlock(ctx, userID)
	noteIncomplete(c, multierr.Append(err, unlockErr))
	if len(unlocked) > 0 {
		if refreshed, getErr := h.users.Get(ctx, userID); getErr == nil {
			user = refreshed
		}
	}

	response.Success(c, http.StatusOK, services.Outcome{XPAwarded: req.Amount, User: user, Unlocked: unlocked})
}

// PATCH /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.UpdateUserInput{
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
