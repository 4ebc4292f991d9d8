package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

// CreateUser inserts a new user with a pre-hashed password. No authorization
// check happens here; who may create whom is the caller's policy.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, salt, role string) (*model.User, error) {
	if username == "" || passwordHash == "" {
		return nil, fmt.Errorf("%w: username and password hash required", model.ErrValidation)
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, salt, role) VALUES (?, ?, ?, ?)`,
		username, passwordHash, salt, role,
	)
	if isConflict(err) {
		return nil, fmt.Errorf("user %s: %w", username, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, username)
}

// GetUser returns a user by username, or nil if it does not exist.
func GetUser(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT username, password_hash, salt, role, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by username.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT username, password_hash, salt, role, created_at FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of user accounts.
func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// UpdateUserRole changes a user's role. No authorization check happens here.
func UpdateUserRole(ctx context.Context, db *sql.DB, username, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE username = ?`, role, username,
	)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", username, model.ErrNotFound)
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash and salt.
func UpdateUserPassword(ctx context.Context, db *sql.DB, username, passwordHash, salt string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ? WHERE username = ?`,
		passwordHash, salt, username,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", username, model.ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user account. Inventory records never reference
// users, so nothing cascades.
func DeleteUser(ctx context.Context, db *sql.DB, username string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", username, model.ErrNotFound)
	}
	return nil
}
