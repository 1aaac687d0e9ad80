package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	NotificationComment             = "comment"
	NotificationLike                = "like"
	NotificationAchievementUnlocked = "achievement_unlocked"
)

// Notification is an append-only in-app event for a user. Payload shape depends on Type.
type Notification struct {
	BaseModel

	UserID  string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    string            `gorm:"type:varchar(64);not null" json:"type"`
	Payload datatypes.JSONMap `json:"payload"`

	Read   bool       `gorm:"column:is_read;default:false;index" json:"read"`
	ReadAt *time.Time `json:"read_at"`
}
