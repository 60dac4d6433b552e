// Package gateway is the persistence boundary: plain CRUD against the
// remote store, no business logic. Implementations return the typed errors
// declared in this package so callers can tell a dead connection apart from
// a bad request.
package gateway

import (
	"context"

	"habitflow/internal/models"
)

// Gateway is the contract the sync coordinator and the sync sources consume.
type Gateway interface {
	ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error)
	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	UpdateHabit(ctx context.Context, id, ownerID string, upd models.HabitUpdate) (models.Habit, error)
	// DeleteHabit removes the habit and all of its logs; the delete is not
	// complete until both are gone.
	DeleteHabit(ctx context.Context, id, ownerID string) error
	ListLogs(ctx context.Context, ownerID string) ([]models.CompletionLog, error)
	ListLogsInRange(ctx context.Context, ownerID, start, end string) ([]models.CompletionLog, error)
	// UpsertCompletion updates any existing log for (habitID, date) in
	// place, otherwise inserts one.
	UpsertCompletion(ctx context.Context, habitID, date string, completed bool, ownerID string) (models.CompletionLog, error)
	// Ping probes backend reachability for the connectivity watcher.
	Ping(ctx context.Context) error
}
