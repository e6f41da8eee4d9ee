package firestore

import (
	shared "github.com/fitsync/server/pkg"
)

// Helper to safely get string from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Helper to safely get an integer from map. Firestore hands numbers back as
// int64 or float64 depending on how they were written.
func getInt(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// Helper to safely get a float from map
func getFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// --- DailyRecord Converters ---

func DailyRecordToFirestore(r *shared.DailyRecord) map[string]interface{} {
	return map[string]interface{}{
		"date":          r.Date,
		"steps":         r.Steps,
		"distance":      r.DistanceKm,
		"calories":      r.Calories,
		"activeMinutes": r.ActiveMinutes,
		"timestamp":     r.SyncedAt,
	}
}

func FirestoreToDailyRecord(m map[string]interface{}) *shared.DailyRecord {
	return &shared.DailyRecord{
		Date:          getString(m, "date"),
		Steps:         getInt(m, "steps"),
		DistanceKm:    getFloat(m, "distance"),
		Calories:      getInt(m, "calories"),
		ActiveMinutes: getInt(m, "activeMinutes"),
		SyncedAt:      getString(m, "timestamp"),
	}
}
