package models

import "time"

// OpType identifies a queued mutation.
type OpType string

const (
	OpCreateHabit      OpType = "create_habit"
	OpUpdateHabit      OpType = "update_habit"
	OpDeleteHabit      OpType = "delete_habit"
	OpToggleCompletion OpType = "toggle_completion"
)

// PendingOperation is a mutation held locally while the backend is
// unreachable, replayed in enqueue order once connectivity returns.
type PendingOperation struct {
	Type       OpType       `json:"type"`
	OwnerID    string       `json:"user_id"`
	Habit      *Habit       `json:"habit,omitempty"`  // create: the optimistic habit (temporary id)
	Update     *HabitUpdate `json:"update,omitempty"` // update: the field changes
	HabitID    string       `json:"habit_id,omitempty"`
	Date       string       `json:"date,omitempty"`
	Completed  bool         `json:"completed,omitempty"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
	Attempts   int          `json:"attempts"`
}
