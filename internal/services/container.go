package services

import (
	"errors"

	"gorm.io/gorm"
)

// ContainerConfig carries the optional collaborators of the service graph.
type ContainerConfig struct {
	// Publisher receives live events; nil disables pushes.
	Publisher Publisher
	// Cache mirrors leaderboard snapshots; nil serves reads from the database.
	Cache           LeaderboardCache
	LeaderboardSize int
	PasswordCost    int
}

// Container wires every gamification service over one database handle.
type Container struct {
	Badges        *BadgeService
	Leveling      *LevelingService
	Notifications *NotificationService
	Achievements  *AchievementService
	Leaderboard   *LeaderboardService
	Activity      *ActivityService
	Users         *UserService
}

// NewContainer constructs the service graph.
func NewContainer(db *gorm.DB, cfg ContainerConfig) (*Container, error) {
	if db == nil {
		return nil, errors.New("services: db is required")
	}

	badges, err := NewBadgeService(db)
	if err != nil {
		return nil, err
	}
	leveling, err := NewLevelingService(db, badges)
	if err != nil {
		return nil, err
	}
	notifier, err := NewNotificationService(db, cfg.Publisher)
	if err != nil {
		return nil, err
	}
	achievements, err := NewAchievementService(db, badges, notifier)
	if err != nil {
		return nil, err
	}

	leaderboardOpts := []LeaderboardOption{WithLeaderboardSize(cfg.LeaderboardSize)}
	if cfg.Cache != nil {
		leaderboardOpts = append(leaderboardOpts, WithLeaderboardCache(cfg.Cache))
	}
	if cfg.Publisher != nil {
		leaderboardOpts = append(leaderboardOpts, WithLeaderboardPublisher(cfg.Publisher))
	}
	leaderboard, err := NewLeaderboardService(db, leaderboardOpts...)
	if err != nil {
		return nil, err
	}

	activity, err := NewActivityService(db, leveling, badges, achievements, notifier)
	if err != nil {
		return nil, err
	}
	users, err := NewUserService(db, achievements, cfg.PasswordCost)
	if err != nil {
		return nil, err
	}

	return &Container{
		Badges:        badges,
		Leveling:      leveling,
		Notifications: notifier,
		Achievements:  achievements,
		Leaderboard:   leaderboard,
		Activity:      activity,
		Users:         users,
	}, nil
}
