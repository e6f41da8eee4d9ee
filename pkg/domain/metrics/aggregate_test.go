package metrics

import (
	"reflect"
	"testing"
)

func TestMerge_UnionOfDates(t *testing.T) {
	steps := map[string]int64{"2025-01-15": 100, "2025-01-16": 200}
	distance := map[string]float64{"2025-01-16": 1.5}
	calories := map[string]int64{"2025-01-17": 1800}
	active := map[string]int64{}

	got := Merge(steps, distance, calories, active)

	if len(got) != 3 {
		t.Fatalf("expected 3 dates, got %d: %v", len(got), got)
	}
	for _, date := range []string{"2025-01-15", "2025-01-16", "2025-01-17"} {
		if _, ok := got[date]; !ok {
			t.Errorf("missing date %s in merged output", date)
		}
	}
}

func TestMerge_MetricLessDateDefaultsToZero(t *testing.T) {
	got := Merge(
		map[string]int64{"2025-01-15": 9000},
		map[string]float64{},
		map[string]int64{},
		map[string]int64{},
	)

	want := DailyMetrics{Steps: 9000, DistanceKm: 0, Calories: 0, ActiveMinutes: 0}
	if got["2025-01-15"] != want {
		t.Errorf("steps-only date = %+v, want %+v", got["2025-01-15"], want)
	}
}

func TestMergeWindow_Deterministic(t *testing.T) {
	win := &RawWindow{
		Steps: []Bucket{
			{StartTimeMillis: jan15Millis, Points: []Point{{IntVal: 5000}}},
		},
		Distance: []Bucket{
			{StartTimeMillis: jan15Millis, Points: []Point{{FpVal: 3456.7}}},
		},
		Calories: []Bucket{
			{StartTimeMillis: jan15Millis, Points: []Point{{FpVal: 2100.4}}},
		},
		ActiveMinutes: []Bucket{
			{StartTimeMillis: jan15Millis, Points: []Point{segment(ActivityRunning, 42)}},
		},
	}

	first := MergeWindow(win)
	second := MergeWindow(win)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("MergeWindow is not deterministic: %v != %v", first, second)
	}

	want := DailyMetrics{Steps: 5000, DistanceKm: 3.46, Calories: 2100, ActiveMinutes: 42}
	if first["2025-01-15"] != want {
		t.Errorf("merged day = %+v, want %+v", first["2025-01-15"], want)
	}
}
