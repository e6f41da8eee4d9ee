package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/domain/metrics"
	"github.com/fitsync/server/pkg/syncer"
	"github.com/fitsync/server/pkg/testing/mocks"
)

func newTestServer(sync *mocks.MockSyncer, store *mocks.MockDailyStore) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(sync, store, nil, logger)
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleSync_ReturnsAggregate(t *testing.T) {
	sync := &mocks.MockSyncer{
		RunFunc: func(ctx context.Context) (map[string]metrics.DailyMetrics, error) {
			return map[string]metrics.DailyMetrics{
				"2025-01-15": {Steps: 5000, DistanceKm: 4.2, Calories: 2100, ActiveMinutes: 30},
			}, nil
		},
	}

	rec := doRequest(t, newTestServer(sync, &mocks.MockDailyStore{}), http.MethodPost, "/api/sync")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]metrics.DailyMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5000), body["2025-01-15"].Steps)
	assert.Equal(t, 4.2, body["2025-01-15"].DistanceKm)
}

func TestHandleSync_GetVariant(t *testing.T) {
	sync := &mocks.MockSyncer{}
	rec := doRequest(t, newTestServer(sync, &mocks.MockDailyStore{}), http.MethodGet, "/api/sync")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSync_ConflictWhileInFlight(t *testing.T) {
	sync := &mocks.MockSyncer{
		RunFunc: func(ctx context.Context) (map[string]metrics.DailyMetrics, error) {
			return nil, syncer.ErrSyncInProgress
		},
	}

	rec := doRequest(t, newTestServer(sync, &mocks.MockDailyStore{}), http.MethodPost, "/api/sync")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleSync_FailureReturns500(t *testing.T) {
	sync := &mocks.MockSyncer{
		RunFunc: func(ctx context.Context) (map[string]metrics.DailyMetrics, error) {
			return nil, errors.New("fetch fitness data: network unreachable")
		},
	}

	rec := doRequest(t, newTestServer(sync, &mocks.MockDailyStore{}), http.MethodPost, "/api/sync")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "network unreachable")
}

func TestHandleLatestData(t *testing.T) {
	t.Run("record exists", func(t *testing.T) {
		store := &mocks.MockDailyStore{
			GetDayFunc: func(ctx context.Context, date string) (*shared.DailyRecord, error) {
				return &shared.DailyRecord{Date: date, Steps: 1234}, nil
			},
		}
		rec := doRequest(t, newTestServer(&mocks.MockSyncer{}, store), http.MethodGet, "/api/latest-data")
		require.Equal(t, http.StatusOK, rec.Code)

		var body shared.DailyRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(1234), body.Steps)
	})

	t.Run("no record yet", func(t *testing.T) {
		rec := doRequest(t, newTestServer(&mocks.MockSyncer{}, &mocks.MockDailyStore{}), http.MethodGet, "/api/latest-data")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "{}", rec.Body.String())
	})
}

func TestHandleRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		var gotStart, gotEnd string
		store := &mocks.MockDailyStore{
			ListRangeFunc: func(ctx context.Context, start, end string) (map[string]*shared.DailyRecord, error) {
				gotStart, gotEnd = start, end
				return map[string]*shared.DailyRecord{
					"2025-01-15": {Date: "2025-01-15", Steps: 100},
				}, nil
			},
		}
		rec := doRequest(t, newTestServer(&mocks.MockSyncer{}, store), http.MethodGet, "/api/range?start=2025-01-01&end=2025-01-31")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2025-01-01", gotStart)
		assert.Equal(t, "2025-01-31", gotEnd)
	})

	t.Run("malformed dates rejected", func(t *testing.T) {
		rec := doRequest(t, newTestServer(&mocks.MockSyncer{}, &mocks.MockDailyStore{}), http.MethodGet, "/api/range?start=January&end=2025-01-31")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing params rejected", func(t *testing.T) {
		rec := doRequest(t, newTestServer(&mocks.MockSyncer{}, &mocks.MockDailyStore{}), http.MethodGet, "/api/range")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleStatus(t *testing.T) {
	lastSync := time.Date(2025, 1, 20, 15, 30, 0, 0, time.UTC)
	sync := &mocks.MockSyncer{
		LastSyncFunc: func() (time.Time, bool) { return lastSync, true },
	}

	rec := doRequest(t, newTestServer(sync, &mocks.MockDailyStore{}), http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"], "no credential store wired in this test")
	assert.Equal(t, "2025-01-20T15:30:00Z", body["lastSync"])
}
