package models

import "time"

// ChangeKind identifies a change-event delta.
type ChangeKind string

const (
	ChangeHabitUpsert ChangeKind = "habit_upsert"
	ChangeHabitDelete ChangeKind = "habit_delete"
	ChangeLogUpsert   ChangeKind = "log_upsert"
)

// ChangeEvent is the message published after a committed write. Consumers
// treat it as authoritative: it supersedes optimistic local state for the
// same entity. Events are keyed by owner id so one partition serializes a
// user's stream.
type ChangeEvent struct {
	Kind      ChangeKind     `json:"kind"`
	OwnerID   string         `json:"user_id"`
	Habit     *Habit         `json:"habit,omitempty"`
	Log       *CompletionLog `json:"log,omitempty"`
	HabitID   string         `json:"habit_id,omitempty"` // delete: the removed habit
	EmittedAt time.Time      `json:"emitted_at"`
}
