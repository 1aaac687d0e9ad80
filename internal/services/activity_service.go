package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
)

// ContentInput carries the fields shared by reviews, tips, wikis and posts.
type ContentInput struct {
	UserID string
	GameID string
	Title  string
	Body   string
	Rating int
}

// CommentInput targets a commentable entity.
type CommentInput struct {
	UserID     string
	EntityType string
	EntityID   string
	Body       string
}

// LikeInput targets a likeable entity.
type LikeInput struct {
	UserID     string
	EntityType string
	EntityID   string
}

// Outcome summarises the gamification effects of an action on the actor.
type Outcome struct {
	XPAwarded int64                `json:"xp_awarded"`
	User      *models.User         `json:"user,omitempty"`
	Unlocked  []models.Achievement `json:"unlocked,omitempty"`
}

// ActivityService persists content actions and drives the gamification cascade: action XP for the
// actor, badge and achievement evaluation, and notifications to content owners.
type ActivityService struct {
	db           *gorm.DB
	leveling     *LevelingService
	badges       *BadgeService
	achievements *AchievementService
	notifier     *NotificationService
	log          *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(db *gorm.DB, leveling *LevelingService, badges *BadgeService, achievements *AchievementService, notifier *NotificationService) (*ActivityService, error) {
	if db == nil {
		return nil, errors.New("activity service: db is required")
	}
	if leveling == nil {
		return nil, errors.New("activity service: leveling service is required")
	}
	return &ActivityService{
		db:           db,
		leveling:     leveling,
		badges:       badges,
		achievements: achievements,
		notifier:     notifier,
		log:          logger.WithModule("activity"),
	}, nil
}

// CreateReview stores a review and rewards its author.
func (s *ActivityService) CreateReview(ctx context.Context, input ContentInput) (*models.Review, *Outcome, error) {
	if err := validateContent(input); err != nil {
		return nil, nil, err
	}
	review := models.Review{UserID: input.UserID, GameID: input.GameID, Title: strings.TrimSpace(input.Title), Body: input.Body, Rating: input.Rating}
	outcome, err := s.createContent(ctx, &review, input.UserID, ActionReview)
	if outcome == nil {
		return nil, nil, err
	}
	return &review, outcome, err
}

// CreateTip stores a tip and rewards its author.
func (s *ActivityService) CreateTip(ctx context.Context, input ContentInput) (*models.Tip, *Outcome, error) {
	if err := validateContent(input); err != nil {
		return nil, nil, err
	}
	tip := models.Tip{UserID: input.UserID, GameID: input.GameID, Title: strings.TrimSpace(input.Title), Body: input.Body}
	outcome, err := s.createContent(ctx, &tip, input.UserID, ActionTip)
	if outcome == nil {
		return nil, nil, err
	}
	return &tip, outcome, err
}

// CreateWiki stores a wiki page and rewards its author.
func (s *ActivityService) CreateWiki(ctx context.Context, input ContentInput) (*models.Wiki, *Outcome, error) {
	if err := validateContent(input); err != nil {
		return nil, nil, err
	}
	wiki := models.Wiki{UserID: input.UserID, GameID: input.GameID, Title: strings.TrimSpace(input.Title), Body: input.Body}
	outcome, err := s.createContent(ctx, &wiki, input.UserID, ActionWiki)
	if outcome == nil {
		return nil, nil, err
	}
	return &wiki, outcome, err
}

// CreatePost stores a forum post and rewards its author.
func (s *ActivityService) CreatePost(ctx context.Context, input ContentInput) (*models.Post, *Outcome, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Title) == "" {
		return nil, nil, apperrors.NewBadRequest("user id and title are required")
	}
	post := models.Post{UserID: input.UserID, GameID: input.GameID, Title: strings.TrimSpace(input.Title), Body: input.Body}
	outcome, err := s.createContent(ctx, &post, input.UserID, ActionPost)
	if outcome == nil {
		return nil, nil, err
	}
	return &post, outcome, err
}

// AddComment stores a comment, rewards the commenter and notifies the entity owner.
func (s *ActivityService) AddComment(ctx context.Context, input CommentInput) (*models.Comment, *Outcome, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Body) == "" {
		return nil, nil, apperrors.NewBadRequest("user id and body are required")
	}
	if err := s.ensureActor(ctx, input.UserID); err != nil {
		return nil, nil, err
	}
	ownerID, err := s.entityOwner(ctx, input.EntityType, input.EntityID)
	if err != nil {
		return nil, nil, err
	}

	comment := models.Comment{
		UserID:     input.UserID,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		Body:       strings.TrimSpace(input.Body),
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, nil, storageError("activity: create comment", err)
	}

	outcome, errs := s.reward(ctx, input.UserID, ActionComment)
	if ownerID != input.UserID {
		errs = multierr.Append(errs, s.notify(ctx, ownerID, models.NotificationComment, map[string]any{
			"entity_type": comment.EntityType,
			"entity_id":   comment.EntityID,
			"comment_id":  comment.ID,
		}))
	}
	return &comment, outcome, errs
}

// AddLike records a like, rewards the liker, re-evaluates the owner's badges and notifies the
// owner. Liking the same entity twice is a conflict.
func (s *ActivityService) AddLike(ctx context.Context, input LikeInput) (*models.Like, *Outcome, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(input.UserID) == "" {
		return nil, nil, apperrors.NewBadRequest("user id is required")
	}
	if err := s.ensureActor(ctx, input.UserID); err != nil {
		return nil, nil, err
	}
	ownerID, err := s.entityOwner(ctx, input.EntityType, input.EntityID)
	if err != nil {
		return nil, nil, err
	}

	like := models.Like{UserID: input.UserID, EntityType: input.EntityType, EntityID: input.EntityID}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, nil, apperrors.NewConflict("entity already liked")
		}
		return nil, nil, storageError("activity: create like", err)
	}

	outcome, errs := s.reward(ctx, input.UserID, ActionLike)
	if ownerID != input.UserID {
		if s.badges != nil {
			if _, err := s.badges.RecalculateBadges(ctx, ownerID); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		errs = multierr.Append(errs, s.notify(ctx, ownerID, models.NotificationLike, map[string]any{
			"entity_type": like.EntityType,
			"entity_id":   like.EntityID,
			"like_id":     like.ID,
		}))
	}
	return &like, outcome, errs
}

func (s *ActivityService) createContent(ctx context.Context, content any, userID, action string) (*Outcome, error) {
	ctx = ensureContext(ctx)
	if err := s.ensureActor(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(content).Error; err != nil {
		return nil, storageError("activity: create "+action, err)
	}
	return s.reward(ctx, userID, action)
}

// reward runs the post-commit cascade. The content write has already succeeded, so failures are
// reported alongside a non-nil outcome.
func (s *ActivityService) reward(ctx context.Context, userID, action string) (*Outcome, error) {
	outcome := &Outcome{XPAwarded: XPForAction(action)}

	var errs error
	user, err := s.leveling.AwardActionXP(ctx, userID, action)
	errs = multierr.Append(errs, err)
	outcome.User = user

	if s.achievements != nil {
		unlocked, err := s.achievements.CheckAndUnlock(ctx, userID)
		errs = multierr.Append(errs, err)
		outcome.Unlocked = unlocked
		if len(unlocked) > 0 {
			var refreshed models.User
			if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&refreshed).Error; err == nil {
				outcome.User = &refreshed
			}
		}
	}

	if errs != nil {
		s.log.Warn("gamification cascade incomplete", logger.UserID(userID), zap.String("action", action), zap.Error(errs))
	}
	return outcome, errs
}

func (s *ActivityService) notify(ctx context.Context, userID, notificationType string, payload map[string]any) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.Notify(ctx, userID, notificationType, payload)
	return err
}

func (s *ActivityService) ensureActor(ctx context.Context, userID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return storageError("activity: load actor", err)
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// entityOwner resolves the author of a commentable entity.
func (s *ActivityService) entityOwner(ctx context.Context, entityType, entityID string) (string, error) {
	if !models.IsValidEntityType(entityType) {
		return "", apperrors.NewBadRequest("unknown entity type " + entityType)
	}
	if strings.TrimSpace(entityID) == "" {
		return "", apperrors.NewBadRequest("entity id is required")
	}

	var target any
	switch entityType {
	case models.EntityReview:
		target = &models.Review{}
	case models.EntityTip:
		target = &models.Tip{}
	case models.EntityWiki:
		target = &models.Wiki{}
	case models.EntityPost:
		target = &models.Post{}
	}

	var owners []string
	if err := s.db.WithContext(ctx).Model(target).Where("id = ?", entityID).Limit(1).Pluck("user_id", &owners).Error; err != nil {
		return "", storageError("activity: load "+entityType, err)
	}
	if len(owners) == 0 {
		return "", apperrors.ErrNotFound
	}
	return owners[0], nil
}

func validateContent(input ContentInput) error {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.GameID) == "" || strings.TrimSpace(input.Title) == "" {
		return apperrors.NewBadRequest("user id, game id and title are required")
	}
	return nil
}
