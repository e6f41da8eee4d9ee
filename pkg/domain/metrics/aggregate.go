package metrics

// Merge combines the four per-metric mappings into one DailyMetrics per date.
// The result's key set is the union of the input key sets; a date missing from
// a given input contributes 0 for that field. Merge is a pure function.
func Merge(steps map[string]int64, distance map[string]float64, calories, activeMinutes map[string]int64) map[string]DailyMetrics {
	out := make(map[string]DailyMetrics)
	for date, v := range steps {
		d := out[date]
		d.Steps = v
		out[date] = d
	}
	for date, v := range distance {
		d := out[date]
		d.DistanceKm = v
		out[date] = d
	}
	for date, v := range calories {
		d := out[date]
		d.Calories = v
		out[date] = d
	}
	for date, v := range activeMinutes {
		d := out[date]
		d.ActiveMinutes = v
		out[date] = d
	}
	return out
}

// MergeWindow normalizes all four streams of a raw window and merges them.
func MergeWindow(win *RawWindow) map[string]DailyMetrics {
	return Merge(
		NormalizeSteps(win.Steps),
		NormalizeDistance(win.Distance),
		NormalizeCalories(win.Calories),
		NormalizeActiveMinutes(win.ActiveMinutes),
	)
}
