// Package metrics contains the daily-metrics domain model and the pure
// transforms that turn raw Google Fit aggregate buckets into per-date records.
package metrics

// DailyMetrics is the complete set of activity metrics for one calendar day.
type DailyMetrics struct {
	Steps         int64   `json:"steps"`
	DistanceKm    float64 `json:"distance"`
	Calories      int64   `json:"calories"`
	ActiveMinutes int64   `json:"activeMinutes"`
}

// Point is a single sample inside a bucket. For count/expenditure metrics the
// value lives in IntVal or FpVal; for activity segments IntVal carries the
// activity type code and the nano timestamps bound the segment.
type Point struct {
	IntVal         int64
	FpVal          float64
	StartTimeNanos int64
	EndTimeNanos   int64
}

// Bucket is one day-sized window returned by an aggregate query.
type Bucket struct {
	StartTimeMillis int64
	Points          []Point
}

// RawWindow holds the four per-metric bucket streams for one sync window.
type RawWindow struct {
	Steps         []Bucket
	Distance      []Bucket
	Calories      []Bucket
	ActiveMinutes []Bucket
}
