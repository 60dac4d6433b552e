package gateway

import (
	"context"
	"database/sql"

	"habitflow/internal/models"
	"habitflow/internal/repository"
)

// Postgres implements Gateway over the repository layer.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Gateway backed by the given pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (g *Postgres) ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	habits, err := repository.ListHabits(ctx, ownerID)
	return habits, classify(err)
}

func (g *Postgres) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if habit.OwnerID == "" {
		return models.Habit{}, ErrUnauthenticated
	}
	if err := repository.CreateHabit(ctx, &habit); err != nil {
		return models.Habit{}, classify(err)
	}
	return habit, nil
}

func (g *Postgres) UpdateHabit(ctx context.Context, id, ownerID string, upd models.HabitUpdate) (models.Habit, error) {
	if ownerID == "" {
		return models.Habit{}, ErrUnauthenticated
	}
	habit, err := repository.UpdateHabit(ctx, id, ownerID, upd)
	return habit, classify(err)
}

func (g *Postgres) DeleteHabit(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	return classify(repository.DeleteHabit(ctx, id, ownerID))
}

func (g *Postgres) ListLogs(ctx context.Context, ownerID string) ([]models.CompletionLog, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	logs, err := repository.ListLogs(ctx, ownerID)
	return logs, classify(err)
}

func (g *Postgres) ListLogsInRange(ctx context.Context, ownerID, start, end string) ([]models.CompletionLog, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	logs, err := repository.ListLogsInRange(ctx, ownerID, start, end)
	return logs, classify(err)
}

func (g *Postgres) UpsertCompletion(ctx context.Context, habitID, date string, completed bool, ownerID string) (models.CompletionLog, error) {
	if ownerID == "" {
		return models.CompletionLog{}, ErrUnauthenticated
	}
	log, err := repository.UpsertCompletion(ctx, habitID, date, completed, ownerID)
	return log, classify(err)
}

func (g *Postgres) Ping(ctx context.Context) error {
	if g.db == nil {
		return ErrUnavailable
	}
	if err := g.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}
