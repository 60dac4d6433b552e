package models

// DayStatus classifies one (habit, date) cell of a progress view.
type DayStatus int

const (
	// StatusMissed means the date has passed (or is today) without a
	// completed log. A past day with no record counts as missed, not
	// unknown.
	StatusMissed DayStatus = iota
	// StatusCompleted means a completed log exists for the date.
	StatusCompleted
	// StatusFuture means the date is strictly after today: not yet
	// attempted, distinct from missed.
	StatusFuture
)

// TodayProgress is the aggregate completion figure for the current date.
// Derived, never persisted.
type TodayProgress struct {
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Date       string `json:"date"`
}

// WeekStats tallies one habit set over a 7-day week starting Monday.
type WeekStats struct {
	TotalHabits    int `json:"totalHabits"`
	TotalDays      int `json:"totalDays"`
	CompletedCount int `json:"completedCount"`
	MissedCount    int `json:"missedCount"`
	FutureCount    int `json:"futureCount"`
}

// OverallStats summarizes every log on record.
type OverallStats struct {
	TotalCompleted int `json:"totalCompleted"`
	TotalMissed    int `json:"totalMissed"`
	TotalDays      int `json:"totalDays"`
	SuccessRate    int `json:"successRate"`
}
