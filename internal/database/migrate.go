package database

import (
	"context"
	"database/sql"

	"habitflow/pkg/logger"
)

// One row per (habit_id, date) is a hard constraint: the toggle path relies
// on ON CONFLICT to update in place instead of inserting duplicates.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS habits (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	user_id     TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_habits_user ON habits (user_id);

CREATE TABLE IF NOT EXISTS habit_logs (
	id         TEXT PRIMARY KEY,
	habit_id   TEXT NOT NULL REFERENCES habits (id) ON DELETE CASCADE,
	date       DATE NOT NULL,
	completed  BOOLEAN NOT NULL DEFAULT FALSE,
	user_id    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (habit_id, date)
);

CREATE INDEX IF NOT EXISTS idx_habit_logs_user_date ON habit_logs (user_id, date);
`

// MigrateOrCreateSchema creates the tables if they do not exist yet.
func MigrateOrCreateSchema(ctx context.Context) error {
	db := DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Error(ctx, "Schema creation failed", "error", err)
		return err
	}
	logger.Info(ctx, "Schema ensured")
	return nil
}
