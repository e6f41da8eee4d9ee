package mocks

import (
	"context"
	"sync"
	"time"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/domain/metrics"
)

// --- Mock MetricSource ---

type MockMetricSource struct {
	FetchWindowFunc func(ctx context.Context, startTimeMillis, endTimeMillis int64) (*metrics.RawWindow, error)
}

func (m *MockMetricSource) FetchWindow(ctx context.Context, startTimeMillis, endTimeMillis int64) (*metrics.RawWindow, error) {
	if m.FetchWindowFunc != nil {
		return m.FetchWindowFunc(ctx, startTimeMillis, endTimeMillis)
	}
	return &metrics.RawWindow{}, nil
}

// --- Mock Destination ---

// MockDestination records every upsert; UpsertCounts tracks writes per date so
// tests can assert upsert-by-date semantics.
type MockDestination struct {
	DestName      string
	UpsertDayFunc func(ctx context.Context, date string, day metrics.DailyMetrics) error

	mu           sync.Mutex
	UpsertCounts map[string]int
	LastValues   map[string]metrics.DailyMetrics
}

func (m *MockDestination) Name() string {
	if m.DestName != "" {
		return m.DestName
	}
	return "mock"
}

func (m *MockDestination) UpsertDay(ctx context.Context, date string, day metrics.DailyMetrics) error {
	if m.UpsertDayFunc != nil {
		if err := m.UpsertDayFunc(ctx, date, day); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertCounts == nil {
		m.UpsertCounts = make(map[string]int)
		m.LastValues = make(map[string]metrics.DailyMetrics)
	}
	m.UpsertCounts[date]++
	m.LastValues[date] = day
	return nil
}

// --- Mock DailyStore ---

type MockDailyStore struct {
	GetDayFunc    func(ctx context.Context, date string) (*shared.DailyRecord, error)
	ListRangeFunc func(ctx context.Context, startDate, endDate string) (map[string]*shared.DailyRecord, error)
}

func (m *MockDailyStore) GetDay(ctx context.Context, date string) (*shared.DailyRecord, error) {
	if m.GetDayFunc != nil {
		return m.GetDayFunc(ctx, date)
	}
	return nil, nil
}

func (m *MockDailyStore) ListRange(ctx context.Context, startDate, endDate string) (map[string]*shared.DailyRecord, error) {
	if m.ListRangeFunc != nil {
		return m.ListRangeFunc(ctx, startDate, endDate)
	}
	return map[string]*shared.DailyRecord{}, nil
}

// --- Mock Syncer ---

type MockSyncer struct {
	RunFunc      func(ctx context.Context) (map[string]metrics.DailyMetrics, error)
	LastSyncFunc func() (time.Time, bool)
}

func (m *MockSyncer) Run(ctx context.Context) (map[string]metrics.DailyMetrics, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return map[string]metrics.DailyMetrics{}, nil
}

func (m *MockSyncer) LastSync() (time.Time, bool) {
	if m.LastSyncFunc != nil {
		return m.LastSyncFunc()
	}
	return time.Time{}, false
}
