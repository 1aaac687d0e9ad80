package models

import "time"

// Leaderboard periods.
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAllTime = "all-time"
)

// LeaderboardPeriods lists every period in rebuild order.
var LeaderboardPeriods = []string{PeriodWeekly, PeriodMonthly, PeriodAllTime}

// LeaderboardEntry is one row of a period snapshot. Rows of a period are replaced wholesale on
// every rebuild.
type LeaderboardEntry struct {
	BaseModel

	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Username     string    `gorm:"type:varchar(255)" json:"username"`
	Rank         int       `gorm:"not null;uniqueIndex:idx_leaderboard_period_rank" json:"rank"`
	XP           int64     `gorm:"not null" json:"xp"`
	Level        int       `gorm:"not null" json:"level"`
	Period       string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_leaderboard_period_rank" json:"period"`
	CalculatedAt time.Time `gorm:"not null" json:"calculated_at"`
}

// IsValidPeriod reports whether period names a leaderboard.
func IsValidPeriod(period string) bool {
	for _, p := range LeaderboardPeriods {
		if p == period {
			return true
		}
	}
	return false
}
