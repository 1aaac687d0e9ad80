package app

import (
	"strings"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
)

// SchedulesByPeriod maps each leaderboard period to its cron spec, omitting disabled ones.
func (c LeaderboardConfig) SchedulesByPeriod() map[string]string {
	out := make(map[string]string, len(models.LeaderboardPeriods))
	for period, spec := range map[string]string{
		models.PeriodWeekly:  c.Schedules.Weekly,
		models.PeriodMonthly: c.Schedules.Monthly,
		models.PeriodAllTime: c.Schedules.AllTime,
	} {
		if spec = strings.TrimSpace(spec); spec != "" {
			out[period] = spec
		}
	}
	return out
}
