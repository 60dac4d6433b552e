package models

import "time"

// Category classifies a habit. Values match what the stored data uses.
type Category string

const (
	CategoryNamaz Category = "namaz"
	CategoryQuran Category = "quran"
	CategoryZikr  Category = "zikr"
	CategoryDaily Category = "daily"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryNamaz, CategoryQuran, CategoryZikr, CategoryDaily:
		return true
	}
	return false
}

// Habit represents a user-defined recurring action.
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	OwnerID     string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HabitInput is the payload for creating a habit.
type HabitInput struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// HabitUpdate is the payload for updating a habit. Empty name/category keep
// the current value; Description overwrites only when set.
type HabitUpdate struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description *string  `json:"description"`
}

// HabitSummary is a habit enriched with derived progress figures, as returned
// by the habit list endpoint.
type HabitSummary struct {
	Habit
	Streak         int `json:"streak"`
	TotalCompleted int `json:"totalCompleted"`
	TotalMissed    int `json:"totalMissed"`
}
