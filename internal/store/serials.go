package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

const serialColumns = `serial, material_id, production_date, acquisition_date,
	warranty_expiration, assigned_to, retail_price, extra_json, last_modified`

// AddSerialsOptions carries the shared fields for a bulk serial insert.
// Dates use YYYY-MM-DD.
type AddSerialsOptions struct {
	ProductionDate  string
	AcquisitionDate string
	RetailPrice     *float64
}

// AddSerials bulk-inserts serial numbers under a material. Serials that
// already exist are logged and skipped; the rest of the batch continues.
// Warranty expiration is derived from the material's warranty duration and
// the acquisition (or production) date when both are known.
// Returns the number of serials inserted.
func AddSerials(ctx context.Context, db *sql.DB, materialID int64, serials []string, opts AddSerialsOptions) (int, error) {
	material, err := GetMaterial(ctx, db, materialID)
	if err != nil {
		return 0, err
	}
	if material == nil {
		return 0, fmt.Errorf("material %d: %w", materialID, model.ErrNotFound)
	}

	warrantyExp := warrantyExpiration(material.WarrantyMonths, opts.AcquisitionDate, opts.ProductionDate)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, serial := range serials {
		serial = strings.TrimSpace(serial)
		if serial == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO serial_numbers (serial, material_id, production_date, acquisition_date, warranty_expiration, retail_price)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			serial, materialID, nullable(opts.ProductionDate), nullable(opts.AcquisitionDate),
			nullable(warrantyExp), opts.RetailPrice,
		)
		if isConflict(err) {
			slog.Warn("serial already exists, skipping", "serial", serial)
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("inserting serial %s: %w", serial, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing serials: %w", err)
	}
	return inserted, nil
}

// GetSerial returns a serial unit, or nil if it does not exist.
func GetSerial(ctx context.Context, db *sql.DB, serial string) (*model.SerialUnit, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+serialColumns+` FROM serial_numbers WHERE serial = ?`, serial,
	)
	s, err := scanSerial(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting serial: %w", err)
	}
	return s, nil
}

// ListSerialsByMaterial returns a material's serial units, ordered by
// production date. By default only available units are returned.
func ListSerialsByMaterial(ctx context.Context, db *sql.DB, materialID int64, includeAssigned bool) ([]model.SerialUnit, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE material_id = ?`
	if !includeAssigned {
		query += ` AND assigned_to IS NULL`
	}
	query += ` ORDER BY production_date, serial`

	rows, err := db.QueryContext(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("listing serials: %w", err)
	}
	defer rows.Close()

	var serials []model.SerialUnit
	for rows.Next() {
		s, err := scanSerial(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning serial: %w", err)
		}
		serials = append(serials, *s)
	}
	return serials, rows.Err()
}

// DeleteSerials irreversibly removes serial rows. Assignment history for the
// serials is retained for audit. Returns the number of rows removed.
func DeleteSerials(ctx context.Context, db *sql.DB, serials []string) (int, error) {
	if len(serials) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(serials)), ",")
	args := make([]any, len(serials))
	for i, s := range serials {
		args[i] = s
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM serial_numbers WHERE serial IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting serials: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// ResolveSerialsForCustomer partitions candidate serials into those that
// exist and are currently available (valid) versus those missing or already
// assigned (invalid). Used to pre-validate bulk assignment requests.
func ResolveSerialsForCustomer(ctx context.Context, db *sql.DB, candidates []string) (valid, invalid []string, err error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(candidates)), ",")
	args := make([]any, len(candidates))
	for i, s := range candidates {
		args[i] = s
	}

	rows, err := db.QueryContext(ctx,
		`SELECT serial, assigned_to FROM serial_numbers WHERE serial IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving serials: %w", err)
	}
	defer rows.Close()

	available := make(map[string]bool)
	for rows.Next() {
		var serial string
		var assignedTo sql.NullString
		if err := rows.Scan(&serial, &assignedTo); err != nil {
			return nil, nil, fmt.Errorf("scanning serial: %w", err)
		}
		available[serial] = !assignedTo.Valid
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for _, s := range candidates {
		if ok, found := available[s]; found && ok {
			valid = append(valid, s)
		} else {
			invalid = append(invalid, s)
		}
	}
	return valid, invalid, nil
}

// warrantyExpiration derives the warranty end date from the material's
// warranty duration and the acquisition (preferred) or production date.
func warrantyExpiration(months *int, acquisitionDate, productionDate string) string {
	if months == nil {
		return ""
	}
	base := acquisitionDate
	if base == "" {
		base = productionDate
	}
	if base == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", base)
	if err != nil {
		return ""
	}
	return t.AddDate(0, *months, 0).Format("2006-01-02")
}

func scanSerial(scan scanFunc) (*model.SerialUnit, error) {
	s := &model.SerialUnit{}
	var prodDate, acqDate, warrantyExp, assignedTo, extra sql.NullString
	var price sql.NullFloat64

	err := scan(&s.Serial, &s.MaterialID, &prodDate, &acqDate, &warrantyExp,
		&assignedTo, &price, &extra, &s.LastModified)
	if err != nil {
		return nil, err
	}

	s.ProductionDate = prodDate.String
	s.AcquisitionDate = acqDate.String
	s.WarrantyExpiration = warrantyExp.String
	s.AssignedTo = assignedTo.String
	s.Extra = extra.String
	if price.Valid {
		s.RetailPrice = &price.Float64
	}
	return s, nil
}
