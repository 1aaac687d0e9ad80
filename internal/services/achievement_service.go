package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/achievements"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
	"github.com/gamehaqqs/gamehaqqs/pkg/metrics"
)

var errAlreadyUnlocked = errors.New("achievement already unlocked")

// AchievementStatus annotates a catalog entry with a user's unlock state.
type AchievementStatus struct {
	models.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	Progress   int        `json:"progress"`
}

// CreateAchievementInput describes a new catalog entry.
type CreateAchievementInput struct {
	Key         string
	Name        string
	Description string
	Icon        string
	Rarity      string
	XPReward    int64
	Criteria    models.Criteria
	SortOrder   int
}

// AchievementService evaluates the achievement catalog and records unlocks exactly once.
type AchievementService struct {
	db       *gorm.DB
	badges   *BadgeService
	notifier *NotificationService
	now      func() time.Time
	log      *zap.Logger
}

// AchievementOption customises the service.
type AchievementOption func(*AchievementService)

// WithAchievementClock overrides the unlock timestamp source.
func WithAchievementClock(now func() time.Time) AchievementOption {
	return func(s *AchievementService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAchievementService constructs an AchievementService. badges and notifier may be nil.
func NewAchievementService(db *gorm.DB, badges *BadgeService, notifier *NotificationService, opts ...AchievementOption) (*AchievementService, error) {
	if db == nil {
		return nil, errors.New("achievement service: db is required")
	}
	svc := &AchievementService{
		db:       db,
		badges:   badges,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.WithModule("achievements"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CheckAndUnlock unlocks every pending achievement the user currently satisfies, in catalog
// order. Evaluation repeats with fresh stats until a pass unlocks nothing, so rewards that lift
// the user's level are taken into account within the same call and an immediate second call
// returns nothing.
//
// Each unlock commits on its own. When a later unlock or a post-commit side effect fails, the
// achievements already unlocked are returned together with the error.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID string) ([]models.Achievement, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	catalog, err := s.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var (
		unlocked    []models.Achievement
		sideEffects error
	)
	for {
		pending, err := s.pendingFor(ctx, userID, catalog)
		if err != nil {
			return unlocked, err
		}
		if len(pending) == 0 {
			break
		}

		rules := make([]achievements.Rule, len(pending))
		for i, achievement := range pending {
			rules[i] = achievements.FromCriteria(achievement.Criteria.Data())
		}
		stats, err := s.loadStats(ctx, userID, achievements.NeedsRank(rules))
		if err != nil {
			return unlocked, err
		}

		progressed := false
		for i, achievement := range pending {
			if !rules[i].Satisfied(stats) {
				continue
			}
			ok, err := s.unlock(ctx, userID, achievement)
			if err != nil {
				return unlocked, multierr.Append(err, sideEffects)
			}
			if !ok {
				continue
			}
			progressed = true
			unlocked = append(unlocked, achievement)
			sideEffects = multierr.Append(sideEffects, s.afterUnlock(ctx, userID, achievement))
		}
		if !progressed {
			break
		}
	}

	return unlocked, sideEffects
}

// GetUserAchievements returns the full catalog annotated with the user's unlocks.
func (s *AchievementService) GetUserAchievements(ctx context.Context, userID string) ([]AchievementStatus, error) {
	ctx = ensureContext(ctx)
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	catalog, err := s.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.UserAchievement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, storageError("achievements: load unlocks", err)
	}
	byAchievement := make(map[string]models.UserAchievement, len(rows))
	for _, row := range rows {
		byAchievement[row.AchievementID] = row
	}

	statuses := make([]AchievementStatus, 0, len(catalog))
	for _, achievement := range catalog {
		status := AchievementStatus{Achievement: achievement}
		if row, ok := byAchievement[achievement.ID]; ok {
			unlockedAt := row.UnlockedAt
			status.Unlocked = true
			status.UnlockedAt = &unlockedAt
			status.Progress = row.Progress
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// ListCatalog returns every achievement in catalog order.
func (s *AchievementService) ListCatalog(ctx context.Context) ([]models.Achievement, error) {
	var catalog []models.Achievement
	if err := s.db.WithContext(ensureContext(ctx)).
		Order("sort_order ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&catalog).Error; err != nil {
		return nil, storageError("achievements: load catalog", err)
	}
	return catalog, nil
}

// CreateAchievement adds a catalog entry after validating rarity and criteria.
func (s *AchievementService) CreateAchievement(ctx context.Context, input CreateAchievementInput) (*models.Achievement, error) {
	ctx = ensureContext(ctx)

	key := strings.ToLower(strings.TrimSpace(input.Key))
	name := strings.TrimSpace(input.Name)
	if key == "" || name == "" {
		return nil, apperrors.NewBadRequest("achievement key and name are required")
	}
	rarity := strings.TrimSpace(input.Rarity)
	if rarity == "" {
		rarity = models.RarityCommon
	}
	if !models.IsValidRarity(rarity) {
		return nil, apperrors.NewBadRequest("unknown rarity " + rarity)
	}
	if input.XPReward < 0 {
		return nil, apperrors.NewBadRequest("xp reward must not be negative")
	}
	if err := achievements.Validate(input.Criteria); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	achievement := models.Achievement{
		Key:         key,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        strings.TrimSpace(input.Icon),
		Rarity:      rarity,
		XPReward:    input.XPReward,
		Criteria:    datatypes.NewJSONType(input.Criteria),
		SortOrder:   input.SortOrder,
	}
	if err := s.db.WithContext(ctx).Create(&achievement).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("achievement key already exists")
		}
		return nil, storageError("achievements: create", err)
	}
	return &achievement, nil
}

func (s *AchievementService) pendingFor(ctx context.Context, userID string, catalog []models.Achievement) ([]models.Achievement, error) {
	var unlockedIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &unlockedIDs).Error; err != nil {
		return nil, storageError("achievements: load unlocks", err)
	}

	done := make(map[string]struct{}, len(unlockedIDs))
	for _, id := range unlockedIDs {
		done[id] = struct{}{}
	}

	pending := make([]models.Achievement, 0, len(catalog))
	for _, achievement := range catalog {
		if _, ok := done[achievement.ID]; !ok {
			pending = append(pending, achievement)
		}
	}
	return pending, nil
}

func (s *AchievementService) loadStats(ctx context.Context, userID string, withRank bool) (achievements.Stats, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return achievements.Stats{}, lookupError("achievements: load user", err)
	}

	stats := achievements.Stats{Level: user.Level}
	if err := db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&stats.Comments).Error; err != nil {
		return stats, storageError("achievements: count comments", err)
	}
	if err := db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&stats.Posts).Error; err != nil {
		return stats, storageError("achievements: count posts", err)
	}

	if withRank {
		var ahead int64
		if err := db.Model(&models.User{}).
			Where("role = ? AND xp > ?", models.RoleUser, user.XP).
			Count(&ahead).Error; err != nil {
			return stats, storageError("achievements: compute rank", err)
		}
		stats.Rank = ahead + 1
	}
	return stats, nil
}

// unlock records the unlock and applies the XP reward in one transaction. It reports false when
// the unlock already exists.
func (s *AchievementService) unlock(ctx context.Context, userID string, achievement models.Achievement) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			UnlockedAt:    s.now(),
			Progress:      100,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueConstraintError(err) {
				return errAlreadyUnlocked
			}
			return storageError("achievements: record unlock", err)
		}

		if achievement.XPReward > 0 {
			if _, err := applyXP(tx, userID, achievement.XPReward); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errAlreadyUnlocked) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.AchievementsUnlocked.WithLabelValues(achievement.Key).Inc()
	if achievement.XPReward > 0 {
		metrics.XPAwarded.WithLabelValues(XPSourceAchievement).Add(float64(achievement.XPReward))
	}
	s.log.Info("achievement unlocked",
		logger.UserID(userID),
		zap.String("achievement", achievement.Key),
		zap.Int64("xp_reward", achievement.XPReward),
	)
	return true, nil
}

func (s *AchievementService) afterUnlock(ctx context.Context, userID string, achievement models.Achievement) error {
	var errs error
	if s.badges != nil {
		if _, err := s.badges.RecalculateBadges(ctx, userID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if s.notifier != nil {
		_, err := s.notifier.Notify(ctx, userID, models.NotificationAchievementUnlocked, map[string]any{
			"achievement_id": achievement.ID,
			"key":            achievement.Key,
			"name":           achievement.Name,
			"xp_reward":      achievement.XPReward,
		})
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		s.log.Warn("post-unlock side effects failed", logger.UserID(userID), zap.String("achievement", achievement.Key), zap.Error(errs))
	}
	return errs
}

func (s *AchievementService) ensureUser(ctx context.Context, userID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return storageError("achievements: load user", err)
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
