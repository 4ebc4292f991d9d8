package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is the ordered list of schema upgrade steps. Each step runs in
// its own transaction together with the version bump, and only runs when the
// stored version is below its position (1-based). Statements must be
// idempotent so a re-run on an already-migrated database is a no-op.
// Append new migrations at the end; never reorder or edit applied ones.
var migrations = [][]string{
	// Migration 1: core inventory schema.
	{
		`CREATE TABLE IF NOT EXISTS customers (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			phone         TEXT,
			email         TEXT,
			last_modified DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS materials (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			name            TEXT NOT NULL,
			model           TEXT NOT NULL,
			producer        TEXT,
			description     TEXT,
			retail_price    REAL,
			is_used         INTEGER NOT NULL DEFAULT 0,
			warranty_months INTEGER,
			category        TEXT,
			auto_category   TEXT,
			auto_confidence REAL NOT NULL DEFAULT 0.0,
			model_family    TEXT,
			last_modified   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS serial_numbers (
			serial              TEXT PRIMARY KEY,
			material_id         INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
			production_date     TEXT,
			acquisition_date    TEXT,
			warranty_expiration TEXT,
			assigned_to         TEXT REFERENCES customers(id) ON DELETE SET NULL,
			retail_price        REAL,
			extra_json          TEXT,
			last_modified       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id         TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
			serial              TEXT NOT NULL,
			assigned_date       TEXT NOT NULL,
			material_id         INTEGER NOT NULL,
			material_name       TEXT NOT NULL,
			material_model      TEXT NOT NULL,
			warranty_expiration TEXT,
			deleted             INTEGER NOT NULL DEFAULT 0,
			extra_json          TEXT,
			last_modified       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS category_aliases (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			token    TEXT UNIQUE,
			category TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_name ON materials(name)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_model ON materials(model)`,
		`CREATE INDEX IF NOT EXISTS idx_materials_auto_category ON materials(auto_category)`,
		`CREATE INDEX IF NOT EXISTS idx_serial_numbers_material_id ON serial_numbers(material_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_customer_id ON assignments(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_serial ON assignments(serial)`,
	},
	// Migration 2: users and settings tables.
	{
		`CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			salt          TEXT NOT NULL,
			role          TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	},
	// Migration 3: material photos.
	{
		`ALTER TABLE materials ADD COLUMN image BLOB`,
		`ALTER TABLE materials ADD COLUMN image_mime TEXT`,
	},
}

// CurrentVersion returns the stored schema version, initializing the version
// table with version 0 on a fresh database.
func CurrentVersion(db *sql.DB) (int, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return 0, fmt.Errorf("creating schema_version table: %w", err)
	}

	_, err = db.Exec(`INSERT INTO schema_version (version)
		SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM schema_version)`)
	if err != nil {
		return 0, fmt.Errorf("initializing schema version: %w", err)
	}

	var version int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending schema migrations. Each step and its version
// bump commit atomically; a failing step rolls back and aborts, leaving the
// database at the last fully applied version.
func Migrate(db *sql.DB) error {
	version, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for i, stmts := range migrations {
		target := i + 1
		if version >= target {
			continue
		}

		slog.Info("applying schema migration", "version", target)
		if err := applyMigration(db, target, stmts); err != nil {
			return fmt.Errorf("migration %d: %w", target, err)
		}
		version = target
	}

	return nil
}

func applyMigration(db *sql.DB, target int, stmts []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing statement: %w", err)
		}
	}

	if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, target); err != nil {
		return fmt.Errorf("advancing schema version: %w", err)
	}

	return tx.Commit()
}
