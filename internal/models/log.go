package models

import "time"

// DateLayout is the calendar-date format used for completion logs.
// Logs carry a date, never a time of day.
const DateLayout = "2006-01-02"

// CompletionLog records that a habit was or was not completed on a calendar
// date. At most one log exists per (habit, date); a second toggle for the
// same day updates the existing record.
type CompletionLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habitId"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Completed bool      `json:"completed"`
	OwnerID   string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LogKey returns the uniqueness key for a (habit, date) pair.
func LogKey(habitID, date string) string {
	return habitID + "|" + date
}

// Key returns the log's (habit, date) uniqueness key.
func (l CompletionLog) Key() string {
	return LogKey(l.HabitID, l.Date)
}

// DateString formats t as a calendar date.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s parses as a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
