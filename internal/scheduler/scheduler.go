package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/pkg/logger"
)

const defaultRunTimeout = 2 * time.Minute

// Rebuilder recomputes one leaderboard period.
type Rebuilder interface {
	Rebuild(ctx context.Context, period string) ([]models.LeaderboardEntry, error)
}

// Scheduler runs periodic leaderboard rebuilds. Runs of the same period never overlap: a tick
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	rebuilder Rebuilder
	schedules map[string]string
	cron      *cron.Cron
	timeout   time.Duration
	log       *zap.Logger
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithRunTimeout bounds a single rebuild run.
func WithRunTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New constructs a Scheduler. schedules maps a period to its cron spec.
func New(rebuilder Rebuilder, schedules map[string]string, opts ...Option) (*Scheduler, error) {
	if rebuilder == nil {
		return nil, errors.New("scheduler: rebuilder is required")
	}

	s := &Scheduler{
		rebuilder: rebuilder,
		schedules: make(map[string]string, len(schedules)),
		timeout:   defaultRunTimeout,
		log:       logger.WithModule("scheduler"),
	}
	for period, spec := range schedules {
		if !models.IsValidPeriod(period) {
			return nil, fmt.Errorf("scheduler: unknown leaderboard period %q", period)
		}
		s.schedules[period] = spec
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		cronLog := cronLogger{log: s.log.Sugar()}
		s.cron = cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		)
	}
	return s, nil
}

// Start registers one job per configured period and launches the cron loop.
func (s *Scheduler) Start() error {
	if len(s.schedules) == 0 {
		return nil
	}

	for _, period := range models.LeaderboardPeriods {
		spec, ok := s.schedules[period]
		if !ok {
			continue
		}
		period := period
		if _, err := s.cron.AddFunc(spec, func() { s.run(period) }); err != nil {
			return fmt.Errorf("scheduler: schedule %s leaderboard %q: %w", period, spec, err)
		}
		s.log.Info("leaderboard rebuild scheduled", zap.String("period", period), zap.String("spec", spec))
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs complete.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce rebuilds every period sequentially, returning all failures combined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	for _, period := range models.LeaderboardPeriods {
		if _, err := s.rebuilder.Rebuild(ctx, period); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", period, err))
		}
	}
	return errs
}

func (s *Scheduler) run(period string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	entries, err := s.rebuilder.Rebuild(ctx, period)
	if err != nil {
		s.log.Warn("scheduled leaderboard rebuild failed", zap.String("period", period), zap.Error(err))
		return
	}
	s.log.Info("scheduled leaderboard rebuild finished", zap.String("period", period), zap.Int("entries", len(entries)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
