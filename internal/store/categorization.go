package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/georgemallousis-design/MyWarehouse/internal/categorize"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

// AutocategorizeMaterial runs the categorizer over one material and persists
// the derived category, confidence and model family. Returns the updated
// material.
func AutocategorizeMaterial(ctx context.Context, db *sql.DB, id int64) (*model.Material, error) {
	material, err := GetMaterial(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, fmt.Errorf("material %d: %w", id, model.ErrNotFound)
	}

	aliases, err := AliasMap(ctx, db)
	if err != nil {
		return nil, err
	}

	res := categorize.Guess(material, aliases)

	_, err = db.ExecContext(ctx,
		`UPDATE materials SET auto_category = ?, auto_confidence = ?, model_family = ?,
		 last_modified = CURRENT_TIMESTAMP WHERE id = ?`,
		nullable(res.Category), res.Confidence, nullable(res.Family), id,
	)
	if err != nil {
		return nil, fmt.Errorf("saving categorization: %w", err)
	}

	material.AutoCategory = res.Category
	material.AutoConfidence = res.Confidence
	material.ModelFamily = res.Family
	return material, nil
}

// BatchAutocategorize sweeps materials and recomputes their auto categories.
// With onlyUncategorized set, materials holding a manual category are left
// alone. Per-material failures are logged and skipped; the sweep continues.
// Returns the number of materials categorized.
func BatchAutocategorize(ctx context.Context, db *sql.DB, onlyUncategorized bool) (int, error) {
	query := `SELECT id FROM materials`
	if onlyUncategorized {
		query += ` WHERE category IS NULL`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("listing materials for categorization: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning material id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	done := 0
	for _, id := range ids {
		if _, err := AutocategorizeMaterial(ctx, db, id); err != nil {
			slog.Error("autocategorization failed", "material_id", id, "error", err)
			continue
		}
		done++
	}
	return done, nil
}
