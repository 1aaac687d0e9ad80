package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
	"github.com/gamehaqqs/gamehaqqs/pkg/metrics"
)

// Badge labels.
const (
	BadgeContributor = "Contributor"
	BadgeStrategist  = "Strategist"
	BadgeInfluencer  = "Influencer"
)

// BadgeCounts are the aggregates badge thresholds are checked against.
type BadgeCounts struct {
	Reviews       int64 `json:"reviews"`
	Tips          int64 `json:"tips"`
	LikesReceived int64 `json:"likes_received"`
}

type badgeRule struct {
	badge   string
	minimum int64
	metric  func(BadgeCounts) int64
}

var badgeRules = []badgeRule{
	{badge: BadgeContributor, minimum: 10, metric: func(c BadgeCounts) int64 { return c.Reviews }},
	{badge: BadgeStrategist, minimum: 5, metric: func(c BadgeCounts) int64 { return c.Tips }},
	{badge: BadgeInfluencer, minimum: 100, metric: func(c BadgeCounts) int64 { return c.LikesReceived }},
}

// EarnedBadges returns the badges whose thresholds counts meet, in rule order.
func EarnedBadges(counts BadgeCounts) []string {
	var earned []string
	for _, rule := range badgeRules {
		if rule.metric(counts) >= rule.minimum {
			earned = append(earned, rule.badge)
		}
	}
	return earned
}

// BadgeService grants badges from content counts. Badges are only ever added.
type BadgeService struct {
	db *gorm.DB
}

// NewBadgeService constructs a BadgeService.
func NewBadgeService(db *gorm.DB) (*BadgeService, error) {
	if db == nil {
		return nil, errors.New("badge service: db is required")
	}
	return &BadgeService{db: db}, nil
}

// RecalculateBadges unions the user's existing badges with those earned from current counts and
// persists the result when it grew. The user row is locked so concurrent grants are not lost.
func (s *BadgeService) RecalculateBadges(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	var (
		badges  []string
		granted []string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).
			First(&user).Error; err != nil {
			return lookupError("badges: load user", err)
		}

		counts, err := countBadgeMetrics(tx, userID)
		if err != nil {
			return err
		}

		badges = append([]string{}, user.Badges...)
		for _, badge := range EarnedBadges(counts) {
			if !containsString(badges, badge) {
				badges = append(badges, badge)
				granted = append(granted, badge)
			}
		}
		if len(granted) == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("badges", datatypes.JSONSlice[string](badges)).Error; err != nil {
			return storageError("badges: persist", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, badge := range granted {
		metrics.BadgesGranted.WithLabelValues(badge).Inc()
		logger.WithModule("badges").Info("badge granted", logger.UserID(userID), zap.String("badge", badge))
	}
	return badges, nil
}

func countBadgeMetrics(db *gorm.DB, userID string) (BadgeCounts, error) {
	var counts BadgeCounts
	if err := db.Model(&models.Review{}).Where("user_id = ?", userID).Count(&counts.Reviews).Error; err != nil {
		return counts, storageError("badges: count reviews", err)
	}
	if err := db.Model(&models.Tip{}).Where("user_id = ?", userID).Count(&counts.Tips).Error; err != nil {
		return counts, storageError("badges: count tips", err)
	}

	reviewIDs := db.Model(&models.Review{}).Select("id").Where("user_id = ?", userID)
	tipIDs := db.Model(&models.Tip{}).Select("id").Where("user_id = ?", userID)
	if err := db.Model(&models.Like{}).
		Where("(entity_type = ? AND entity_id IN (?)) OR (entity_type = ? AND entity_id IN (?))",
			models.EntityReview, reviewIDs, models.EntityTip, tipIDs).
		Count(&counts.LikesReceived).Error; err != nil {
		return counts, storageError("badges: count likes", err)
	}
	return counts, nil
}
