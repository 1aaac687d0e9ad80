package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/monitoring"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
	apperrors "github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
	"github.com/gamehaqqs/gamehaqqs/pkg/metrics"
)

// DefaultLeaderboardSize is the number of ranks kept per period.
const DefaultLeaderboardSize = 100

// LeaderboardCache is an optional read-through mirror of stored snapshots.
type LeaderboardCache interface {
	Store(ctx context.Context, period string, entries []models.LeaderboardEntry) error
	Top(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, bool, error)
}

// LeaderboardService rebuilds and serves ranked snapshots.
type LeaderboardService struct {
	db        *gorm.DB
	cache     LeaderboardCache
	publisher Publisher
	size      int
	now       func() time.Time
	log       *zap.Logger

	mu sync.Mutex
}

// LeaderboardOption customises the leaderboard service.
type LeaderboardOption func(*LeaderboardService)

// WithLeaderboardCache mirrors snapshots into cache.
func WithLeaderboardCache(cache LeaderboardCache) LeaderboardOption {
	return func(s *LeaderboardService) {
		s.cache = cache
	}
}

// WithLeaderboardPublisher announces completed rebuilds to live subscribers.
func WithLeaderboardPublisher(publisher Publisher) LeaderboardOption {
	return func(s *LeaderboardService) {
		s.publisher = publisher
	}
}

// WithLeaderboardSize overrides the number of ranks kept per period.
func WithLeaderboardSize(size int) LeaderboardOption {
	return func(s *LeaderboardService) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithLeaderboardClock overrides the snapshot timestamp source.
func WithLeaderboardClock(now func() time.Time) LeaderboardOption {
	return func(s *LeaderboardService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(db *gorm.DB, opts ...LeaderboardOption) (*LeaderboardService, error) {
	if db == nil {
		return nil, errors.New("leaderboard service: db is required")
	}
	svc := &LeaderboardService{
		db:   db,
		size: DefaultLeaderboardSize,
		now:  func() time.Time { return time.Now().UTC() },
		log:  logger.WithModule("leaderboard"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Rebuild replaces the period snapshot with the current top active users ranked by XP, ties broken
// by user id. Rebuilds within this process are serialized; the delete and insert share one
// transaction so readers never see a partial snapshot.
func (s *LeaderboardService) Rebuild(ctx context.Context, period string) ([]models.LeaderboardEntry, error) {
	ctx = ensureContext(ctx)
	period, err := normalisePeriod(period)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	calculatedAt := s.now()

	var entries []models.LeaderboardEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period = ?", period).Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return storageError("leaderboard: clear snapshot", err)
		}

		var users []models.User
		if err := tx.Where("is_active = ?", true).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "xp"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
			Limit(s.size).
			Find(&users).Error; err != nil {
			return storageError("leaderboard: rank users", err)
		}
		if len(users) == 0 {
			return nil
		}

		entries = make([]models.LeaderboardEntry, 0, len(users))
		for i, user := range users {
			entries = append(entries, models.LeaderboardEntry{
				UserID:       user.ID,
				Username:     user.Username,
				Rank:         i + 1,
				XP:           user.XP,
				Level:        user.Level,
				Period:       period,
				CalculatedAt: calculatedAt,
			})
		}
		if err := tx.CreateInBatches(&entries, 100).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewConflict("leaderboard rebuild raced with another writer").WithInternal(err)
			}
			return storageError("leaderboard: insert snapshot", err)
		}
		return nil
	})

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.LeaderboardRebuildDuration.WithLabelValues(period, result).Observe(time.Since(started).Seconds())
	monitoring.Rebuilds.Record(period, len(entries), err)
	if err != nil {
		s.log.Error("leaderboard rebuild failed", zap.String("period", period), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Store(ctx, period, entries); cacheErr != nil {
			s.log.Warn("leaderboard cache refresh failed", zap.String("period", period), zap.Error(cacheErr))
		}
	}
	if s.publisher != nil {
		s.publisher.Broadcast(notifications.Event{
			Event: EventLeaderboardRebuilt,
			Data:  map[string]any{"period": period, "calculated_at": calculatedAt, "entries": len(entries)},
		})
	}

	s.log.Info("leaderboard rebuilt", zap.String("period", period), zap.Int("entries", len(entries)))
	return entries, nil
}

// List returns up to limit ranks of the period snapshot, preferring the cache when configured.
func (s *LeaderboardService) List(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, error) {
	ctx = ensureContext(ctx)
	period, err := normalisePeriod(period)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, s.size, s.size)

	if s.cache != nil {
		cached, ok, cacheErr := s.cache.Top(ctx, period, limit)
		switch {
		case cacheErr != nil:
			s.log.Warn("leaderboard cache read failed", zap.String("period", period), zap.Error(cacheErr))
		case ok:
			return cached, nil
		}
	}

	var entries []models.LeaderboardEntry
	if err := s.db.WithContext(ctx).
		Where("period = ?", period).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}}).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, storageError("leaderboard: list", err)
	}
	return entries, nil
}

func normalisePeriod(period string) (string, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "alltime" || period == "all_time" {
		period = models.PeriodAllTime
	}
	if !models.IsValidPeriod(period) {
		return "", apperrors.NewBadRequest("unknown leaderboard period " + period)
	}
	return period, nil
}
