package models

import (
	"time"

	"gorm.io/datatypes"
)

// Achievement rarities.
const (
	RarityCommon    = "Common"
	RarityUncommon  = "Uncommon"
	RarityRare      = "Rare"
	RarityEpic      = "Epic"
	RarityLegendary = "Legendary"
)

// Criteria is the persisted unlock rule of an achievement. Type is the discriminant; the
// remaining parameters are read only by the kinds that use them.
type Criteria struct {
	Type    string `json:"type"`
	Level   *int   `json:"level,omitempty"`
	Count   *int   `json:"count,omitempty"`
	MaxRank *int   `json:"max_rank,omitempty"`
}

// Achievement is an admin managed catalog entry.
type Achievement struct {
	BaseModel

	Key         string                       `gorm:"type:varchar(64);uniqueIndex;not null" json:"key"`
	Name        string                       `gorm:"type:varchar(128);not null" json:"name"`
	Description string                       `gorm:"type:text" json:"description"`
	Icon        string                       `gorm:"type:varchar(64)" json:"icon"`
	Rarity      string                       `gorm:"type:varchar(16);not null;default:'Common'" json:"rarity"`
	XPReward    int64                        `gorm:"not null;default:0" json:"xp_reward"`
	Criteria    datatypes.JSONType[Criteria] `json:"criteria"`
	SortOrder   int                          `gorm:"not null;default:0;index" json:"sort_order"`
}

// UserAchievement records a single unlock. The composite unique index makes unlocks exactly-once.
type UserAchievement struct {
	BaseModel

	UserID        string       `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string       `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	UnlockedAt    time.Time    `gorm:"not null" json:"unlocked_at"`
	Progress      int          `gorm:"not null;default:100" json:"progress"`
}

// IsValidRarity reports whether rarity is one of the catalog rarities.
func IsValidRarity(rarity string) bool {
	switch rarity {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}
