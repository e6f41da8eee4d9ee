package database

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/domain/metrics"
	storage "github.com/fitsync/server/pkg/storage/firestore"
)

// FirestoreAdapter is both a sync destination and the read store for the API.
// It wraps our typed storage client.
type FirestoreAdapter struct {
	storage *storage.Client
	now     func() time.Time
}

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{
		storage: storage.NewClient(client),
		now:     time.Now,
	}
}

func (a *FirestoreAdapter) Name() string {
	return shared.DestinationFirestore
}

// UpsertDay writes the day's record under its date key. Document id equals
// the date string, so re-syncing a day overwrites the same document.
func (a *FirestoreAdapter) UpsertDay(ctx context.Context, date string, day metrics.DailyMetrics) error {
	rec := &shared.DailyRecord{
		Date:          date,
		Steps:         day.Steps,
		DistanceKm:    day.DistanceKm,
		Calories:      day.Calories,
		ActiveMinutes: day.ActiveMinutes,
		SyncedAt:      a.now().UTC().Format(time.RFC3339),
	}
	return a.storage.FitnessData().Doc(date).Set(ctx, rec)
}

// GetDay returns nil without error when no record exists for the date.
func (a *FirestoreAdapter) GetDay(ctx context.Context, date string) (*shared.DailyRecord, error) {
	rec, err := a.storage.FitnessData().Doc(date).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRange returns all records with startDate <= date <= endDate, keyed by
// date string.
func (a *FirestoreAdapter) ListRange(ctx context.Context, startDate, endDate string) (map[string]*shared.DailyRecord, error) {
	return a.storage.FitnessData().
		Where("date", ">=", startDate).
		Where("date", "<=", endDate).
		GetAll(ctx)
}
