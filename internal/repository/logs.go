package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"habitflow/internal/database"
	"habitflow/internal/models"
	"habitflow/pkg/logger"
)

const logColumns = `id, habit_id, to_char(date, 'YYYY-MM-DD'), completed, user_id, updated_at`

func scanLogs(rows *sql.Rows) ([]models.CompletionLog, error) {
	defer rows.Close()
	var logs []models.CompletionLog
	for rows.Next() {
		var l models.CompletionLog
		if err := rows.Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &l.OwnerID, &l.UpdatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListLogs returns every completion log owned by the given user.
func ListLogs(ctx context.Context, ownerID string) ([]models.CompletionLog, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM habit_logs WHERE user_id = $1 ORDER BY date ASC`, ownerID)
	if err != nil {
		logger.Error(ctx, "Repository ListLogs failed", "error", err)
		return nil, err
	}
	return scanLogs(rows)
}

// ListLogsInRange returns the user's logs with start <= date <= end.
func ListLogsInRange(ctx context.Context, ownerID, start, end string) ([]models.CompletionLog, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM habit_logs
		 WHERE user_id = $1 AND date BETWEEN $2::date AND $3::date ORDER BY date ASC`,
		ownerID, start, end)
	if err != nil {
		logger.Error(ctx, "Repository ListLogsInRange failed", "error", err)
		return nil, err
	}
	return scanLogs(rows)
}

// UpsertCompletion records the completion flag for (habitID, date). The
// UNIQUE (habit_id, date) constraint routes a repeated toggle into an
// in-place update, so the day never gets a second row.
func UpsertCompletion(ctx context.Context, habitID, date string, completed bool, ownerID string) (models.CompletionLog, error) {
	var l models.CompletionLog
	db := database.DB(ctx)
	if db == nil {
		return l, sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`INSERT INTO habit_logs (id, habit_id, date, completed, user_id, updated_at)
		 VALUES ($1, $2, $3::date, $4, $5, NOW())
		 ON CONFLICT (habit_id, date)
		 DO UPDATE SET completed = EXCLUDED.completed, updated_at = NOW()
		 RETURNING `+logColumns,
		uuid.New().String(), habitID, date, completed, ownerID).
		Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &l.OwnerID, &l.UpdatedAt)
	if err != nil {
		logger.Error(ctx, "Repository UpsertCompletion failed", "error", err, "habit_id", habitID, "date", date)
		return l, err
	}
	return l, nil
}
