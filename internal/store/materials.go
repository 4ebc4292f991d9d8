package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

const materialColumns = `id, name, model, producer, description, retail_price,
	is_used, warranty_months, category, auto_category, auto_confidence,
	model_family, image_mime, last_modified`

// CreateMaterial inserts a new material and returns it with its assigned ID.
func CreateMaterial(ctx context.Context, db *sql.DB, m *model.Material) (*model.Material, error) {
	if m.Name == "" || m.Model == "" {
		return nil, fmt.Errorf("%w: material name and model required", model.ErrValidation)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO materials (name, model, producer, description, retail_price, is_used, warranty_months)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Model, nullable(m.Producer), nullable(m.Description),
		m.RetailPrice, boolToInt(m.Used), m.WarrantyMonths,
	)
	if err != nil {
		return nil, fmt.Errorf("creating material: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting material id: %w", err)
	}

	return GetMaterial(ctx, db, id)
}

// GetMaterial returns a material by ID, or nil if it does not exist.
func GetMaterial(ctx context.Context, db *sql.DB, id int64) (*model.Material, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = ?`, id,
	)
	m, err := scanMaterial(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting material: %w", err)
	}
	return m, nil
}

// ListMaterials returns materials filtered by used flag and optionally by a
// name/model substring and a category (manual or auto). Each row carries its
// available and total serial counts.
func ListMaterials(ctx context.Context, db *sql.DB, used bool, nameQuery, category string) ([]model.Material, error) {
	clauses := []string{"is_used = ?"}
	args := []any{boolToInt(used)}

	if nameQuery != "" {
		clauses = append(clauses, "(lower(name) LIKE ? OR lower(model) LIKE ?)")
		like := "%" + strings.ToLower(nameQuery) + "%"
		args = append(args, like, like)
	}
	if category != "" {
		clauses = append(clauses, "(category = ? OR auto_category = ?)")
		args = append(args, category, category)
	}

	query := `SELECT ` + materialColumns + `,
		(SELECT COUNT(*) FROM serial_numbers WHERE material_id = materials.id AND assigned_to IS NULL) AS available_serials,
		(SELECT COUNT(*) FROM serial_numbers WHERE material_id = materials.id) AS total_serials
		FROM materials WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY name, model`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		m, err := scanMaterialCounts(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning material: %w", err)
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// UpdateMaterial updates the supplied fields of a material. Nil fields are
// left unchanged. Categorizer-derived fields and the used flag are not
// touched here.
func UpdateMaterial(ctx context.Context, db *sql.DB, id int64, upd model.MaterialUpdate) error {
	var sets []string
	var args []any

	if upd.Name != nil {
		if *upd.Name == "" {
			return fmt.Errorf("%w: material name cannot be empty", model.ErrValidation)
		}
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Model != nil {
		if *upd.Model == "" {
			return fmt.Errorf("%w: material model cannot be empty", model.ErrValidation)
		}
		sets = append(sets, "model = ?")
		args = append(args, *upd.Model)
	}
	if upd.Producer != nil {
		sets = append(sets, "producer = ?")
		args = append(args, nullable(*upd.Producer))
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullable(*upd.Description))
	}
	if upd.RetailPrice != nil {
		sets = append(sets, "retail_price = ?")
		args = append(args, *upd.RetailPrice)
	}
	if upd.WarrantyMonths != nil {
		sets = append(sets, "warranty_months = ?")
		args = append(args, *upd.WarrantyMonths)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "last_modified = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := db.ExecContext(ctx,
		`UPDATE materials SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return fmt.Errorf("updating material: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("material %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// SetMaterialCategory sets or clears (empty string) the manual category.
func SetMaterialCategory(ctx context.Context, db *sql.DB, id int64, category string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE materials SET category = ?, last_modified = CURRENT_TIMESTAMP WHERE id = ?`,
		nullable(category), id,
	)
	if err != nil {
		return fmt.Errorf("setting material category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("material %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteMaterial removes a material and, via cascade, its serial units.
// Assignment history keeps its denormalized snapshots.
func DeleteMaterial(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting material: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("material %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// ListCategories returns every distinct category in use, manual or auto.
func ListCategories(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT category FROM (
			SELECT category FROM materials WHERE category IS NOT NULL
			UNION ALL
			SELECT auto_category FROM materials WHERE auto_category IS NOT NULL
		) GROUP BY category ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// ListDynamicCategories returns auto categories held by at least minCount
// materials.
func ListDynamicCategories(ctx context.Context, db *sql.DB, minCount int) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT auto_category FROM materials
		 WHERE auto_category IS NOT NULL
		 GROUP BY auto_category HAVING COUNT(*) >= ?
		 ORDER BY auto_category`, minCount,
	)
	if err != nil {
		return nil, fmt.Errorf("listing dynamic categories: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// SetMaterialImage stores a material's photo.
func SetMaterialImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE materials SET image = ?, image_mime = ?, last_modified = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting material image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("material %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// GetMaterialImage returns a material's photo data and MIME type, or nil if
// none is stored.
func GetMaterialImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM materials WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting material image: %w", err)
	}
	return image, mime.String, nil
}

type scanFunc func(dest ...any) error

func scanMaterial(scan scanFunc) (*model.Material, error) {
	m := &model.Material{}
	var producer, description, category, autoCategory, family, imageMime sql.NullString
	var price sql.NullFloat64
	var warranty sql.NullInt64
	var used int

	err := scan(&m.ID, &m.Name, &m.Model, &producer, &description, &price,
		&used, &warranty, &category, &autoCategory, &m.AutoConfidence,
		&family, &imageMime, &m.LastModified)
	if err != nil {
		return nil, err
	}

	m.Producer = producer.String
	m.Description = description.String
	m.Category = category.String
	m.AutoCategory = autoCategory.String
	m.ModelFamily = family.String
	m.ImageMime = imageMime.String
	m.Used = used != 0
	if price.Valid {
		m.RetailPrice = &price.Float64
	}
	if warranty.Valid {
		months := int(warranty.Int64)
		m.WarrantyMonths = &months
	}
	return m, nil
}

func scanMaterialCounts(rows *sql.Rows) (*model.Material, error) {
	m := &model.Material{}
	var producer, description, category, autoCategory, family, imageMime sql.NullString
	var price sql.NullFloat64
	var warranty sql.NullInt64
	var used int

	err := rows.Scan(&m.ID, &m.Name, &m.Model, &producer, &description, &price,
		&used, &warranty, &category, &autoCategory, &m.AutoConfidence,
		&family, &imageMime, &m.LastModified,
		&m.AvailableSerials, &m.TotalSerials)
	if err != nil {
		return nil, err
	}

	m.Producer = producer.String
	m.Description = description.String
	m.Category = category.String
	m.AutoCategory = autoCategory.String
	m.ModelFamily = family.String
	m.ImageMime = imageMime.String
	m.Used = used != 0
	if price.Valid {
		m.RetailPrice = &price.Float64
	}
	if warranty.Valid {
		months := int(warranty.Int64)
		m.WarrantyMonths = &months
	}
	return m, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
