package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
	"github.com/gamehaqqs/gamehaqqs/pkg/metrics"
)

// Qualifying actions.
const (
	ActionReview  = "review"
	ActionWiki    = "wiki"
	ActionTip     = "tip"
	ActionPost    = "post"
	ActionComment = "comment"
	ActionLike    = "like"
)

// XP award sources recorded in metrics.
const (
	XPSourceAction      = "action"
	XPSourceAchievement = "achievement"
	XPSourceManual      = "manual"
)

var actionXP = map[string]int64{
	ActionReview:  50,
	ActionWiki:    40,
	ActionTip:     25,
	ActionPost:    15,
	ActionComment: 5,
	ActionLike:    1,
}

// XPForAction returns the XP granted for a qualifying action, or 0 for anything else.
func XPForAction(action string) int64 {
	return actionXP[strings.ToLower(strings.TrimSpace(action))]
}

// LevelingService owns every persisted change to a user's XP and level.
type LevelingService struct {
	db     *gorm.DB
	badges *BadgeService
}

// NewLevelingService constructs a LevelingService. badges may be nil to skip recalculation.
func NewLevelingService(db *gorm.DB, badges *BadgeService) (*LevelingService, error) {
	if db == nil {
		return nil, errors.New("leveling service: db is required")
	}
	return &LevelingService{db: db, badges: badges}, nil
}

// AwardXP adds amount to the user's XP under a row lock and recomputes the level, then
// recalculates badges once the update has committed.
func (s *LevelingService) AwardXP(ctx context.Context, userID string, amount int64) (*models.User, error) {
	return s.award(ctx, userID, amount, XPSourceManual)
}

// AwardActionXP awards the XP configured for action.
func (s *LevelingService) AwardActionXP(ctx context.Context, userID, action string) (*models.User, error) {
	return s.award(ctx, userID, XPForAction(action), XPSourceAction)
}

func (s *LevelingService) award(ctx context.Context, userID string, amount int64, source string) (*models.User, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if amount < 0 {
		return nil, apperrors.NewBadRequest("xp amount must not be negative")
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := applyXP(tx, userID, amount)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if amount > 0 {
		metrics.XPAwarded.WithLabelValues(source).Add(float64(amount))
	}

	if s.badges != nil {
		badges, err := s.badges.RecalculateBadges(ctx, userID)
		if err != nil {
			logger.WithModule("leveling").Warn("badge recalculation failed", logger.UserID(userID), zap.Error(err))
			return user, err
		}
		user.Badges = badges
	}
	return user, nil
}

// applyXP performs the locked read-modify-write inside an open transaction. Callers that
// already hold a transaction (achievement unlocks) use it directly so the award commits
// atomically with their own writes.
func applyXP(tx *gorm.DB, userID string, amount int64) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return nil, lookupError("leveling: load user", err)
	}

	if amount == 0 {
		return &user, nil
	}

	user.XP += amount
	user.Level = models.LevelForXP(user.XP)

	if err := tx.Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumns(map[string]any{
			"xp":    user.XP,
			"level": user.Level,
		}).Error; err != nil {
		return nil, storageError("leveling: update xp", err)
	}
	return &user, nil
}
