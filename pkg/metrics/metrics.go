package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// XPAwarded sums XP granted by source (action|achievement|manual).
	XPAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamehaqqs_xp_awarded_total",
			Help: "Total XP awarded to users",
		},
		[]string{"source"},
	)

	// AchievementsUnlocked counts unlocks by achievement key.
	AchievementsUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamehaqqs_achievements_unlocked_total",
			Help: "Total number of achievement unlocks",
		},
		[]string{"achievement"},
	)

	// BadgesGranted counts newly granted badges by label.
	BadgesGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamehaqqs_badges_granted_total",
			Help: "Total number of badges granted",
		},
		[]string{"badge"},
	)

	// LeaderboardRebuildDuration measures full snapshot rebuilds per period and result (success|failure).
	LeaderboardRebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamehaqqs_leaderboard_rebuild_seconds",
			Help:    "Leaderboard rebuild duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"period", "result"},
	)

	// AuthAttempts counts login and registration outcomes (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamehaqqs_auth_attempts_total",
			Help: "Authentication attempts by result",
		},
		[]string{"flow", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamehaqqs_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
