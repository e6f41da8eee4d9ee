package metrics

import (
	"math"
	"time"
)

// Activity type codes that count towards active minutes.
const (
	ActivityWalking = 7
	ActivityBiking  = 8
	ActivityRunning = 72
)

const (
	// MaxActiveMinutesPerDay caps a day's active-minute total.
	MaxActiveMinutesPerDay = 1440

	nanosPerMinute = int64(60 * 1e9)
)

// DateKey truncates a bucket start time (ms since epoch) to its UTC calendar
// date, formatted YYYY-MM-DD.
func DateKey(startTimeMillis int64) string {
	return time.UnixMilli(startTimeMillis).UTC().Format(time.DateOnly)
}

// NormalizeSteps maps each bucket to its date's step count. The aggregate API
// returns at most one point per day bucket; a point-less bucket counts as 0.
func NormalizeSteps(buckets []Bucket) map[string]int64 {
	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		var steps int64
		if len(b.Points) > 0 {
			steps = b.Points[0].IntVal
		}
		out[DateKey(b.StartTimeMillis)] = steps
	}
	return out
}

// NormalizeDistance maps each bucket to its date's distance in kilometers,
// rounded to 2 decimal places. Source values are meters.
func NormalizeDistance(buckets []Bucket) map[string]float64 {
	out := make(map[string]float64, len(buckets))
	for _, b := range buckets {
		var meters float64
		if len(b.Points) > 0 {
			meters = b.Points[0].FpVal
		}
		out[DateKey(b.StartTimeMillis)] = math.Round(meters/1000*100) / 100
	}
	return out
}

// NormalizeCalories maps each bucket to its date's calorie expenditure,
// rounded to the nearest whole calorie.
func NormalizeCalories(buckets []Bucket) map[string]int64 {
	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		var cals float64
		if len(b.Points) > 0 {
			cals = b.Points[0].FpVal
		}
		out[DateKey(b.StartTimeMillis)] = int64(math.Round(cals))
	}
	return out
}

// NormalizeActiveMinutes maps each bucket of activity segments to its date's
// active-minute total. Only walking, biking and running segments qualify.
// Each segment's duration is rounded to whole minutes before summing, and a
// day's total is clamped at MaxActiveMinutesPerDay.
func NormalizeActiveMinutes(buckets []Bucket) map[string]int64 {
	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		var minutes int64
		for _, p := range b.Points {
			switch p.IntVal {
			case ActivityWalking, ActivityBiking, ActivityRunning:
				duration := p.EndTimeNanos - p.StartTimeNanos
				minutes += int64(math.Round(float64(duration) / float64(nanosPerMinute)))
			}
		}
		if minutes > MaxActiveMinutesPerDay {
			minutes = MaxActiveMinutesPerDay
		}
		out[DateKey(b.StartTimeMillis)] = minutes
	}
	return out
}
