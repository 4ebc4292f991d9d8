// Package auth implements credential hashing and verification for user
// accounts, and the session tokens handed to callers on success.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// ErrInvalidCredentials is returned for any authentication failure. It is
// deliberately the same for unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticate verifies a username/password pair against the stored salted
// hash and returns the user record on success.
func Authenticate(ctx context.Context, db *sql.DB, username, password string) (*model.User, error) {
	user, err := store.GetUser(ctx, db, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		// Burn a hash computation so missing users cost the same as
		// wrong passwords.
		VerifyPassword(password, "", "")
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash, user.Salt) {
		slog.Warn("authentication failed", "username", username)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
