package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/gamehaqqs/gamehaqqs/internal/models"
)

type fakeRebuilder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeRebuilder) Rebuild(_ context.Context, period string) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, period)
	if err := f.fail[period]; err != nil {
		return nil, err
	}
	return []models.LeaderboardEntry{{Period: period, Rank: 1}}, nil
}

func (f *fakeRebuilder) callCount(period string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.calls {
		if p == period {
			n++
		}
	}
	return n
}

func TestNewRejectsUnknownPeriod(t *testing.T) {
	_, err := New(&fakeRebuilder{}, map[string]string{"daily": "@hourly"})
	require.Error(t, err)

	_, err = New(nil, nil)
	require.Error(t, err)
}

func TestRunOnceRebuildsEveryPeriod(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	s, err := New(rebuilder, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	require.Equal(t, models.LeaderboardPeriods, rebuilder.calls)
}

func TestRunOnceCombinesFailures(t *testing.T) {
	rebuilder := &fakeRebuilder{fail: map[string]error{
		models.PeriodWeekly:  errors.New("weekly down"),
		models.PeriodAllTime: errors.New("all-time down"),
	}}
	s, err := New(rebuilder, nil)
	require.NoError(t, err)

	err = s.RunOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "weekly down")
	require.Contains(t, err.Error(), "all-time down")
	require.Len(t, rebuilder.calls, 3, "a failing period does not stop the others")
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s, err := New(&fakeRebuilder{}, map[string]string{models.PeriodWeekly: "not a cron spec"})
	require.NoError(t, err)
	require.Error(t, s.Start())
}

func TestStartRunsScheduledPeriods(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	s, err := New(rebuilder,
		map[string]string{models.PeriodMonthly: "@every 1s"},
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
		WithRunTimeout(time.Second),
	)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { <-s.Stop().Done() })

	require.Eventually(t, func() bool {
		return rebuilder.callCount(models.PeriodMonthly) > 0
	}, 5*time.Second, 50*time.Millisecond)
	require.Zero(t, rebuilder.callCount(models.PeriodWeekly))
}
