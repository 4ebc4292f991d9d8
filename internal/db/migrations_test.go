package db

import "testing"

func TestMigrateFreshDatabase(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer database.Close()

	version, err := CurrentVersion(database)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != 0 {
		t.Errorf("expected fresh database at version 0, got %d", version)
	}

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	version, err = CurrentVersion(database)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected version %d after migration, got %d", len(migrations), version)
	}

	// All tables exist.
	for _, table := range []string{
		"customers", "materials", "serial_numbers", "assignments",
		"category_aliases", "users", "settings", "schema_version",
	} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}

	// Re-running must be a no-op: version unchanged, no errors from
	// non-idempotent statements (ALTER TABLE steps are version-gated).
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	version, err := CurrentVersion(database)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected version %d, got %d", len(migrations), version)
	}

	// schema_version holds a single row.
	var rows int
	if err := database.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&rows); err != nil {
		t.Fatalf("counting version rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 schema_version row, got %d", rows)
	}
}
