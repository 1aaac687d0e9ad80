package monitoring

import (
	"sort"
	"sync"
	"time"
)

// RebuildRecord summarises the rebuild history of one leaderboard period.
type RebuildRecord struct {
	Period              string    `json:"period"`
	Runs                uint64    `json:"runs"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastRunAt           time.Time `json:"last_run_at"`
	LastSuccessAt       time.Time `json:"last_success_at,omitempty"`
	LastEntries         int       `json:"last_entries"`
	LastError           string    `json:"last_error,omitempty"`
}

// RebuildTracker remembers the outcome of leaderboard rebuilds for health reporting.
type RebuildTracker struct {
	mu      sync.RWMutex
	records map[string]*RebuildRecord
	now     func() time.Time
}

// Rebuilds is the process-wide tracker fed by the leaderboard service.
var Rebuilds = NewRebuildTracker()

// NewRebuildTracker constructs an empty tracker.
func NewRebuildTracker() *RebuildTracker {
	return &RebuildTracker{
		records: make(map[string]*RebuildRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record stores the outcome of a rebuild.
func (t *RebuildTracker) Record(period string, entries int, err error) {
	if t == nil || period == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[period]
	if !ok {
		record = &RebuildRecord{Period: period}
		t.records[period] = record
	}

	now := t.now()
	record.Runs++
	record.LastRunAt = now
	if err != nil {
		record.ConsecutiveFailures++
		record.LastError = err.Error()
		return
	}
	record.ConsecutiveFailures = 0
	record.LastError = ""
	record.LastSuccessAt = now
	record.LastEntries = entries
}

// Snapshot returns a copy of every record ordered by period.
func (t *RebuildTracker) Snapshot() []RebuildRecord {
	if t == nil {
		return nil
	}

	t.mu.RLock()
	out := make([]RebuildRecord, 0, len(t.records))
	for _, record := range t.records {
		out = append(out, *record)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
