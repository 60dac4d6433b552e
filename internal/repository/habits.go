package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"habitflow/internal/database"
	"habitflow/internal/models"
	"habitflow/pkg/logger"
)

const habitColumns = `id, name, category, description, user_id, created_at, updated_at`

// ListHabits returns all habits owned by the given user, oldest first.
func ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 ORDER BY created_at ASC`, ownerID)
	if err != nil {
		logger.Error(ctx, "Repository ListHabits failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.Category, &h.Description, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt); err != nil {
			logger.Error(ctx, "Repository scan habit failed", "error", err)
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// GetHabit returns one habit by id, scoped to its owner.
func GetHabit(ctx context.Context, id, ownerID string) (models.Habit, error) {
	var h models.Habit
	db := database.DB(ctx)
	if db == nil {
		return h, sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = $1 AND user_id = $2`, id, ownerID).
		Scan(&h.ID, &h.Name, &h.Category, &h.Description, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// CreateHabit inserts a new habit. A missing id is generated.
func CreateHabit(ctx context.Context, habit *models.Habit) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	now := time.Now()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	_, err := db.ExecContext(ctx,
		`INSERT INTO habits (id, name, category, description, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		habit.ID, habit.Name, habit.Category, habit.Description, habit.OwnerID, habit.CreatedAt, habit.UpdatedAt)
	if err != nil {
		logger.Error(ctx, "Repository CreateHabit failed", "error", err)
		return err
	}
	return nil
}

// UpdateHabit applies a partial update and returns the resulting row.
// Returns sql.ErrNoRows when the habit does not exist for this owner.
func UpdateHabit(ctx context.Context, id, ownerID string, upd models.HabitUpdate) (models.Habit, error) {
	var h models.Habit
	db := database.DB(ctx)
	if db == nil {
		return h, sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`UPDATE habits SET
			name        = COALESCE(NULLIF($1, ''), name),
			category    = COALESCE(NULLIF($2, ''), category),
			description = COALESCE($3, description),
			updated_at  = $4
		 WHERE id = $5 AND user_id = $6
		 RETURNING `+habitColumns,
		upd.Name, string(upd.Category), upd.Description, time.Now(), id, ownerID).
		Scan(&h.ID, &h.Name, &h.Category, &h.Description, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Error(ctx, "Repository UpdateHabit failed", "error", err, "id", id)
	}
	return h, err
}

// DeleteHabit removes a habit; its logs go with it (FK cascade), so the
// habit and its history disappear in one statement.
// Returns sql.ErrNoRows when nothing matched.
func DeleteHabit(ctx context.Context, id, ownerID string) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	res, err := db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		logger.Error(ctx, "Repository DeleteHabit failed", "error", err, "id", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
