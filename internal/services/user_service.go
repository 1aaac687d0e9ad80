package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/pkg/crypto"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
)

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput enumerates attributes admins may change.
type UpdateUserInput struct {
	Role     *string
	IsActive *bool
}

// UserService manages accounts and credential checks.
type UserService struct {
	db           *gorm.DB
	achievements *AchievementService
	passwordCost int
}

// NewUserService constructs a UserService. achievements may be nil to skip the registration unlock.
func NewUserService(db *gorm.DB, achievements *AchievementService, passwordCost int) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, achievements: achievements, passwordCost: passwordCost}, nil
}

// Register creates an ordinary account and immediately evaluates achievements so
// account-created rewards are granted. The returned user reflects any XP those rewards gave.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, []models.Achievement, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, nil, apperrors.NewBadRequest("username, email and password are required")
	}

	hash, err := crypto.HashPasswordWithCost(input.Password, s.passwordCost)
	if err != nil {
		return nil, nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		Level:        models.LevelForXP(0),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, nil, apperrors.NewConflict("username or email already registered")
		}
		return nil, nil, storageError("users: create", err)
	}
	logger.WithModule("users").Info("user registered", logger.UserID(user.ID), zap.String("username", user.Username))

	if s.achievements == nil {
		return &user, nil, nil
	}

	unlocked, unlockErr := s.achievements.CheckAndUnlock(ctx, user.ID)
	refreshed, err := s.Get(ctx, user.ID)
	if err != nil {
		return &user, unlocked, err
	}
	return refreshed, unlocked, unlockErr
}

// Authenticate verifies credentials by username or email.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	ctx = ensureContext(ctx)
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageError("users: load by identifier", err)
	}

	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrForbidden
	}
	return &user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ensureContext(ctx)).Where("id = ?", strings.TrimSpace(id)).First(&user).Error; err != nil {
		return nil, lookupError("users: load", err)
	}
	return &user, nil
}

// Update applies admin changes to role or activation. Deactivated users drop out of leaderboards
// on the next rebuild.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		switch role {
		case models.RoleUser, models.RoleModerator, models.RoleAdmin:
			updates["role"] = role
		default:
			return nil, apperrors.NewBadRequest("unknown role " + role)
		}
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, storageError("users: update", err)
	}
	return s.Get(ctx, user.ID)
}
