// Package syncer drives the fetch/aggregate/persist pipeline.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/domain/metrics"
)

// ErrSyncInProgress is returned when a sync is requested while another pass
// is still in flight. The caller retries later; passes never queue.
var ErrSyncInProgress = errors.New("sync already in progress")

// Orchestrator runs sync passes: fetch the four metric streams for a window,
// normalize and merge them, then upsert every date into each registered
// destination. A pass holds no state between invocations beyond the
// last-success timestamp.
type Orchestrator struct {
	source       shared.MetricSource
	destinations []shared.Destination
	windowStart  time.Time
	logger       *slog.Logger
	now          func() time.Time

	running sync.Mutex

	mu       sync.Mutex
	lastSync time.Time
}

func NewOrchestrator(source shared.MetricSource, windowStart time.Time, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		source:      source,
		windowStart: windowStart,
		logger:      logger.With("component", "syncer"),
		now:         time.Now,
	}
}

// Register adds a destination. Not safe to call after the first Run.
func (o *Orchestrator) Register(d shared.Destination) {
	o.destinations = append(o.destinations, d)
}

// Run executes one pass over the default window [windowStart, now).
func (o *Orchestrator) Run(ctx context.Context) (map[string]metrics.DailyMetrics, error) {
	return o.RunWindow(ctx, o.windowStart, o.now())
}

// RunWindow executes one pass over an explicit window. At most one pass runs
// at a time; a second caller gets ErrSyncInProgress immediately.
//
// The aggregate mapping is returned even when destination writes fail: write
// errors for individual dates are joined into the returned error, and dates
// already written stay written. A source failure aborts the pass before any
// write.
func (o *Orchestrator) RunWindow(ctx context.Context, start, end time.Time) (map[string]metrics.DailyMetrics, error) {
	if !o.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer o.running.Unlock()

	logger := o.logger.With("sync_id", uuid.NewString())
	logger.Info("Sync started",
		"window_start", start.UTC().Format(time.RFC3339),
		"window_end", end.UTC().Format(time.RFC3339))

	win, err := o.source.FetchWindow(ctx, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		logger.Error("Sync failed fetching fitness data", "error", err)
		return nil, fmt.Errorf("fetch fitness data: %w", err)
	}

	daily := metrics.MergeWindow(win)

	var writeErrs []error
	for _, date := range sortedDates(daily) {
		day := daily[date]
		for _, dest := range o.destinations {
			if err := dest.UpsertDay(ctx, date, day); err != nil {
				logger.Error("Destination write failed",
					"destination", dest.Name(), "date", date, "error", err)
				writeErrs = append(writeErrs, fmt.Errorf("%s upsert %s: %w", dest.Name(), date, err))
			}
		}
	}

	if len(writeErrs) > 0 {
		return daily, errors.Join(writeErrs...)
	}

	o.mu.Lock()
	o.lastSync = o.now()
	o.mu.Unlock()

	logger.Info("Sync completed", "days", len(daily), "destinations", len(o.destinations))
	return daily, nil
}

// LastSync reports when the last fully successful pass finished.
func (o *Orchestrator) LastSync() (time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSync, !o.lastSync.IsZero()
}

func sortedDates(daily map[string]metrics.DailyMetrics) []string {
	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
