package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

// LearnAlias upserts a token-to-category mapping used by the categorizer.
// Tokens are stored lowercased; last write wins.
func LearnAlias(ctx context.Context, db *sql.DB, token, category string) error {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || category == "" {
		return fmt.Errorf("%w: token and category required", model.ErrValidation)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO category_aliases (token, category) VALUES (?, ?)
		 ON CONFLICT (token) DO UPDATE SET category = excluded.category`,
		token, category,
	)
	if err != nil {
		return fmt.Errorf("learning alias: %w", err)
	}
	return nil
}

// AliasMap returns a snapshot of all learned token aliases.
func AliasMap(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT token, category FROM category_aliases`)
	if err != nil {
		return nil, fmt.Errorf("loading aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var token, category string
		if err := rows.Scan(&token, &category); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		aliases[strings.ToLower(token)] = category
	}
	return aliases, rows.Err()
}

// DeleteAlias removes a learned alias.
func DeleteAlias(ctx context.Context, db *sql.DB, token string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM category_aliases WHERE token = ?`, strings.ToLower(token),
	)
	if err != nil {
		return fmt.Errorf("deleting alias: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("alias %s: %w", token, model.ErrNotFound)
	}
	return nil
}
