package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"habitflow/internal/database"
	"habitflow/internal/models"
	"habitflow/pkg/logger"
)

// CreateUser inserts a new account. The unique index on email makes a
// duplicate registration fail with a pq unique-violation.
func CreateUser(ctx context.Context, user *models.User) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash)
		 VALUES ($1, $2, $3, $4) RETURNING created_at`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash).
		Scan(&user.CreatedAt)
}

// GetUserByEmail returns the account for an email, or sql.ErrNoRows.
func GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	db := database.DB(ctx)
	if db == nil {
		return u, sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Error(ctx, "Repository GetUserByEmail failed", "error", err)
	}
	return u, err
}

// UpdateUserPassword swaps the stored hash for an account.
func UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	res, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		logger.Error(ctx, "Repository UpdateUserPassword failed", "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetUserByID returns the account for an id, or sql.ErrNoRows.
func GetUserByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	db := database.DB(ctx)
	if db == nil {
		return u, sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
