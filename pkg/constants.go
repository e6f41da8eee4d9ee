package shared

const (
	ProjectID = "fitsync-4d5cb" // Can be overridden by env var in main if needed

	CollectionFitnessData = "fitnessData"

	// Default sync window start: the day tracking began. Every sync covers
	// [SyncWindowStart, now) unless an explicit window is given.
	SyncWindowStart = "2025-01-15T00:00:00Z"

	// Cron schedules (UTC).
	CronDaytimeSync = "0 12,15,18,21,0 * * *"
	CronMorningSync = "35 5 * * *"

	DestinationFirestore = "firestore"
	DestinationNotion    = "notion"
)
