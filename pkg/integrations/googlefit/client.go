// Package googlefit queries the Google Fit aggregate API for day-bucketed
// activity metrics.
package googlefit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	fitness "google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"

	"github.com/fitsync/server/pkg/domain/metrics"
)

const (
	// One bucket per calendar day.
	bucketDurationMillis = 86400000

	requestTimeout = 30 * time.Second
)

// Aggregate data types and their preferred derived data sources.
const (
	stepsDataType  = "com.google.step_count.delta"
	stepsSource    = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"
	distanceType   = "com.google.distance.delta"
	distanceSource = "derived:com.google.distance.delta:com.google.android.gms:merge_distance_delta"
	caloriesType   = "com.google.calories.expended"
	caloriesSource = "derived:com.google.calories.expended:com.google.android.gms:merge_calories_expended"
	activityType   = "com.google.activity.segment"
	activitySource = "derived:com.google.activity.segment:com.google.android.gms:merge_activity_segments"
)

// ClientProvider supplies an authenticated HTTP client, failing when no
// credential is available.
type ClientProvider interface {
	Client(ctx context.Context) (*http.Client, error)
}

// Client fetches raw metric buckets for a sync window.
type Client struct {
	auth   ClientProvider
	logger *slog.Logger
}

func NewClient(auth ClientProvider, logger *slog.Logger) *Client {
	return &Client{
		auth:   auth,
		logger: logger.With("component", "googlefit"),
	}
}

// FetchWindow issues the four aggregate queries for [start, end) concurrently.
// The queries touch disjoint data; if any one fails the whole fetch fails and
// no partial result is returned.
func (c *Client) FetchWindow(ctx context.Context, startTimeMillis, endTimeMillis int64) (*metrics.RawWindow, error) {
	hc, err := c.auth.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("google fit auth: %w", err)
	}

	svc, err := fitness.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("create fitness service: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var win metrics.RawWindow
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		win.Steps, err = c.aggregate(ctx, svc, stepsDataType, stepsSource, startTimeMillis, endTimeMillis)
		return err
	})
	g.Go(func() (err error) {
		win.Distance, err = c.aggregate(ctx, svc, distanceType, distanceSource, startTimeMillis, endTimeMillis)
		return err
	})
	g.Go(func() (err error) {
		win.Calories, err = c.aggregate(ctx, svc, caloriesType, caloriesSource, startTimeMillis, endTimeMillis)
		return err
	})
	g.Go(func() (err error) {
		win.ActiveMinutes, err = c.aggregate(ctx, svc, activityType, activitySource, startTimeMillis, endTimeMillis)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched fitness window",
		"start_millis", startTimeMillis,
		"end_millis", endTimeMillis,
		"step_buckets", len(win.Steps))
	return &win, nil
}

func (c *Client) aggregate(ctx context.Context, svc *fitness.Service, dataType, dataSource string, startTimeMillis, endTimeMillis int64) ([]metrics.Bucket, error) {
	req := &fitness.AggregateRequest{
		AggregateBy: []*fitness.AggregateBy{{
			DataTypeName: dataType,
			DataSourceId: dataSource,
		}},
		BucketByTime:    &fitness.BucketByTime{DurationMillis: bucketDurationMillis},
		StartTimeMillis: startTimeMillis,
		EndTimeMillis:   endTimeMillis,
	}

	resp, err := svc.Users.Dataset.Aggregate("me", req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", dataType, err)
	}
	return convertBuckets(resp), nil
}

// convertBuckets maps the API response onto the domain bucket model. Buckets
// without datasets or points come through empty so their dates still appear.
func convertBuckets(resp *fitness.AggregateResponse) []metrics.Bucket {
	buckets := make([]metrics.Bucket, 0, len(resp.Bucket))
	for _, b := range resp.Bucket {
		bucket := metrics.Bucket{StartTimeMillis: b.StartTimeMillis}
		for _, ds := range b.Dataset {
			for _, p := range ds.Point {
				point := metrics.Point{
					StartTimeNanos: p.StartTimeNanos,
					EndTimeNanos:   p.EndTimeNanos,
				}
				if len(p.Value) > 0 {
					point.IntVal = p.Value[0].IntVal
					point.FpVal = p.Value[0].FpVal
				}
				bucket.Points = append(bucket.Points, point)
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}
