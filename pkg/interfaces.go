package shared

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/fitsync/server/pkg/domain/metrics"
)

// ErrNoCredentials is returned by TokenStore.Load when no credential has been
// stored yet (the user has never completed the OAuth flow, or logged out).
var ErrNoCredentials = errors.New("no stored credentials")

// --- Source Interfaces ---

// MetricSource fetches the four raw day-bucketed metric streams for a window.
// All four queries must succeed for the fetch to succeed.
type MetricSource interface {
	FetchWindow(ctx context.Context, startTimeMillis, endTimeMillis int64) (*metrics.RawWindow, error)
}

// --- Persistence Interfaces ---

// Destination persists one day's metrics under its date key, overwriting any
// existing record for that exact date.
type Destination interface {
	Name() string
	UpsertDay(ctx context.Context, date string, day metrics.DailyMetrics) error
}

// DailyRecord is the persisted form of one day's metrics.
type DailyRecord struct {
	Date          string  `json:"date"`
	Steps         int64   `json:"steps"`
	DistanceKm    float64 `json:"distance"`
	Calories      int64   `json:"calories"`
	ActiveMinutes int64   `json:"activeMinutes"`
	SyncedAt      string  `json:"timestamp"` // RFC 3339
}

// DailyStore reads back persisted records for the API surface.
type DailyStore interface {
	// GetDay returns nil without error when no record exists for the date.
	GetDay(ctx context.Context, date string) (*DailyRecord, error)
	ListRange(ctx context.Context, startDate, endDate string) (map[string]*DailyRecord, error)
}

// --- Credential Interfaces ---

// TokenStore loads and saves the user's OAuth credential.
type TokenStore interface {
	// Load returns ErrNoCredentials when nothing is stored.
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
	Clear() error
}

// --- Sync Interfaces ---

// Syncer runs one fetch/aggregate/persist pass over the default window.
type Syncer interface {
	Run(ctx context.Context) (map[string]metrics.DailyMetrics, error)
	// LastSync reports when the last successful pass finished, if any.
	LastSync() (time.Time, bool)
}
