package domain

// LogSummary carries the simple aggregates the client renders over its
// in-memory window of recent logs.
type LogSummary struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Entries   int    `json:"entries"`

	AverageMood   float64 `json:"average_mood"`
	MinMood       int     `json:"min_mood"`
	MaxMood       int     `json:"max_mood"`
	AverageEnergy float64 `json:"average_energy"`
	AverageStress float64 `json:"average_stress"`
	AverageSleep  float64 `json:"average_sleep_hours"`

	MoodCounts    []MoodCount     `json:"mood_counts"`
	TopActivities []ActivityCount `json:"top_activities"`
}

type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

type ActivityCount struct {
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}
