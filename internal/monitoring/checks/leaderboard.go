package checks

import (
	"context"
	"strings"
	"time"

	"github.com/gamehaqqs/gamehaqqs/internal/monitoring"
)

const defaultLeaderboardMaxAge = 12 * time.Hour

// Leaderboard reports degraded when a period's last rebuild failed or its last success is older
// than maxAge. Periods that have never been rebuilt are not judged.
func Leaderboard(tracker *monitoring.RebuildTracker, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultLeaderboardMaxAge
	}

	return monitoring.NewCheck("leaderboard", func(ctx context.Context) monitoring.ProbeResult {
		records := tracker.Snapshot()
		if len(records) == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no rebuilds recorded"}
		}

		now := time.Now().UTC()
		var problems []string
		for _, record := range records {
			switch {
			case record.ConsecutiveFailures > 0:
				problems = append(problems, record.Period+": "+record.LastError)
			case now.Sub(record.LastSuccessAt) > maxAge:
				problems = append(problems, record.Period+": stale since "+record.LastSuccessAt.Format(time.RFC3339))
			}
		}

		if len(problems) > 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: strings.Join(problems, "; ")}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	})
}
