package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

const assignmentColumns = `id, customer_id, serial, assigned_date, material_id,
	material_name, material_model, warranty_expiration, deleted, extra_json, last_modified`

// AssignSerial assigns an available serial unit to a customer. The history
// record (with a snapshot of material name/model and warranty expiration)
// and the serial's assignment pointer are written in one transaction.
// Returns ErrNotFound when the serial does not exist or is already assigned;
// the two cases are indistinguishable to the caller.
func AssignSerial(ctx context.Context, db *sql.DB, customerID, serial string) error {
	if customerID == "" || serial == "" {
		return fmt.Errorf("%w: customer id and serial required", model.ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE id = ?`, customerID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking customer: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("customer %s: %w", customerID, model.ErrNotFound)
	}

	var materialID int64
	var warrantyExp sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT material_id, warranty_expiration FROM serial_numbers
		 WHERE serial = ? AND assigned_to IS NULL`, serial,
	).Scan(&materialID, &warrantyExp)
	if err == sql.ErrNoRows {
		return fmt.Errorf("serial %s not available: %w", serial, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking serial: %w", err)
	}

	var matName, matModel string
	err = tx.QueryRowContext(ctx,
		`SELECT name, model FROM materials WHERE id = ?`, materialID,
	).Scan(&matName, &matModel)
	if err != nil {
		return fmt.Errorf("reading material for snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (customer_id, serial, assigned_date, material_id, material_name, material_model, warranty_expiration)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customerID, serial, time.Now().Format("2006-01-02"),
		materialID, matName, matModel, warrantyExp,
	)
	if err != nil {
		return fmt.Errorf("recording assignment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE serial_numbers SET assigned_to = ?, last_modified = CURRENT_TIMESTAMP WHERE serial = ?`,
		customerID, serial,
	)
	if err != nil {
		return fmt.Errorf("marking serial assigned: %w", err)
	}

	return tx.Commit()
}

// UnassignSerial releases a serial from its current customer, soft-deleting
// the most recent active assignment so the audit trail survives. Clearing
// the pointer is a no-op when no active assignment exists.
func UnassignSerial(ctx context.Context, db *sql.DB, serial string) error {
	return unassign(ctx, db, serial, false)
}

// UnassignSerialAndPurge releases a serial and physically removes the
// assignment record instead of soft-deleting it.
func UnassignSerialAndPurge(ctx context.Context, db *sql.DB, serial string) error {
	return unassign(ctx, db, serial, true)
}

func unassign(ctx context.Context, db *sql.DB, serial string, purge bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := unassignTx(ctx, tx, serial, purge); err != nil {
		return err
	}

	return tx.Commit()
}

// unassignTx performs the unassignment inside an existing transaction.
func unassignTx(ctx context.Context, tx *sql.Tx, serial string, purge bool) error {
	var assignmentID int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM assignments WHERE serial = ? AND deleted = 0
		 ORDER BY assigned_date DESC, id DESC LIMIT 1`, serial,
	).Scan(&assignmentID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("finding active assignment: %w", err)
	}

	if err == nil {
		if purge {
			_, err = tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, assignmentID)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE assignments SET deleted = 1, last_modified = CURRENT_TIMESTAMP WHERE id = ?`,
				assignmentID,
			)
		}
		if err != nil {
			return fmt.Errorf("closing assignment: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE serial_numbers SET assigned_to = NULL, last_modified = CURRENT_TIMESTAMP WHERE serial = ?`,
		serial,
	)
	if err != nil {
		return fmt.Errorf("clearing serial assignment: %w", err)
	}
	return nil
}

// TransferSerialsToUsed moves serial units to used stock. Assigned units are
// first soft-unassigned when fromCustomer is empty or matches the current
// holder; the owning material's used flag then flips to true and stays
// there. Missing serials are skipped, not fatal to the batch. Returns the
// number of serials processed.
func TransferSerialsToUsed(ctx context.Context, db *sql.DB, serials []string, fromCustomer string) (int, error) {
	processed := 0
	for _, serial := range serials {
		ok, err := transferSerialToUsed(ctx, db, serial, fromCustomer)
		if err != nil {
			return processed, fmt.Errorf("transferring serial %s: %w", serial, err)
		}
		if ok {
			processed++
		} else {
			slog.Warn("serial not found, skipping transfer", "serial", serial)
		}
	}
	return processed, nil
}

func transferSerialToUsed(ctx context.Context, db *sql.DB, serial, fromCustomer string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var assignedTo sql.NullString
	var materialID int64
	err = tx.QueryRowContext(ctx,
		`SELECT assigned_to, material_id FROM serial_numbers WHERE serial = ?`, serial,
	).Scan(&assignedTo, &materialID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading serial: %w", err)
	}

	if assignedTo.Valid && (fromCustomer == "" || assignedTo.String == fromCustomer) {
		if err := unassignTx(ctx, tx, serial, false); err != nil {
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE materials SET is_used = 1, last_modified = CURRENT_TIMESTAMP WHERE id = ?`,
		materialID,
	)
	if err != nil {
		return false, fmt.Errorf("marking material used: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE serial_numbers SET last_modified = CURRENT_TIMESTAMP WHERE serial = ?`, serial,
	)
	if err != nil {
		return false, fmt.Errorf("touching serial: %w", err)
	}

	return true, tx.Commit()
}

// GetCustomerHistory returns a customer's assignment history, most recent
// first, including soft-deleted records and the linked serial's dates when
// the serial still exists.
func GetCustomerHistory(ctx context.Context, db *sql.DB, customerID string) ([]model.Assignment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.id, a.customer_id, a.serial, a.assigned_date, a.material_id,
		        a.material_name, a.material_model, a.warranty_expiration,
		        a.deleted, a.extra_json, a.last_modified,
		        s.production_date, s.acquisition_date
		 FROM assignments a
		 LEFT JOIN serial_numbers s ON s.serial = a.serial
		 WHERE a.customer_id = ?
		 ORDER BY a.assigned_date DESC, a.id DESC`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting customer history: %w", err)
	}
	defer rows.Close()

	var history []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var warrantyExp, extra, prodDate, acqDate sql.NullString
		var deleted int
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Serial, &a.AssignedDate,
			&a.MaterialID, &a.MaterialName, &a.MaterialModel, &warrantyExp,
			&deleted, &extra, &a.LastModified, &prodDate, &acqDate); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.WarrantyExpiration = warrantyExp.String
		a.Extra = extra.String
		a.Deleted = deleted != 0
		a.ProductionDate = prodDate.String
		a.AcquisitionDate = acqDate.String
		history = append(history, a)
	}
	return history, rows.Err()
}

// GetSerialHistory returns every assignment record for a serial, most
// recent first. Records survive deletion of the serial itself.
func GetSerialHistory(ctx context.Context, db *sql.DB, serial string) ([]model.Assignment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE serial = ? ORDER BY assigned_date DESC, id DESC`, serial,
	)
	if err != nil {
		return nil, fmt.Errorf("getting serial history: %w", err)
	}
	defer rows.Close()

	var history []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var warrantyExp, extra sql.NullString
		var deleted int
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Serial, &a.AssignedDate,
			&a.MaterialID, &a.MaterialName, &a.MaterialModel, &warrantyExp,
			&deleted, &extra, &a.LastModified); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.WarrantyExpiration = warrantyExp.String
		a.Extra = extra.String
		a.Deleted = deleted != 0
		history = append(history, a)
	}
	return history, rows.Err()
}
