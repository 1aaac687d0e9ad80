package models

import (
	"gorm.io/datatypes"
)

// XPPerLevel is the XP span of one level. Level is always XP/XPPerLevel + 1.
const XPPerLevel = 100

// Account roles.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is a community member together with the gamification state owned by the leveling engine
// and badge evaluator.
type User struct {
	BaseModel

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	Role     string `gorm:"type:varchar(16);not null;default:'user';index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	XP     int64                       `gorm:"not null;default:0;index" json:"xp"`
	Level  int                         `gorm:"not null;default:1" json:"level"`
	Badges datatypes.JSONSlice[string] `json:"badges"`
}

// LevelForXP derives the level reached with the supplied cumulative XP.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// AddXP accrues XP on an already loaded row and recomputes the level. It does not persist and
// must not be used where awards to the same user can race; services.LevelingService.AwardXP locks
// the row instead.
func (u *User) AddXP(amount int64) {
	if amount < 0 {
		return
	}
	u.XP += amount
	u.Level = LevelForXP(u.XP)
}

// HasBadge reports whether the badge label has been granted.
func (u *User) HasBadge(badge string) bool {
	for _, existing := range u.Badges {
		if existing == badge {
			return true
		}
	}
	return false
}
