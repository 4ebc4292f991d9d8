package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

// CreateCustomer inserts a new customer. The ID is supplied by the caller
// and immutable afterwards.
func CreateCustomer(ctx context.Context, db *sql.DB, id, name, phone, email string) (*model.Customer, error) {
	if id == "" || name == "" {
		return nil, fmt.Errorf("%w: customer id and name required", model.ErrValidation)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO customers (id, name, phone, email) VALUES (?, ?, ?, ?)`,
		id, name, nullable(phone), nullable(email),
	)
	if isConflict(err) {
		return nil, fmt.Errorf("customer %s: %w", id, model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}

	return GetCustomer(ctx, db, id)
}

// GetCustomer returns a customer by ID, or nil if it does not exist.
func GetCustomer(ctx context.Context, db *sql.DB, id string) (*model.Customer, error) {
	c := &model.Customer{}
	var phone, email sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, phone, email, last_modified FROM customers WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &phone, &email, &c.LastModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	c.Phone = phone.String
	c.Email = email.String
	return c, nil
}

// SearchCustomers returns customers whose name or ID contains the query,
// ordered by name. An empty query returns everyone.
func SearchCustomers(ctx context.Context, db *sql.DB, query string) ([]model.Customer, error) {
	like := "%" + strings.ToLower(query) + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, phone, email, last_modified FROM customers
		 WHERE lower(name) LIKE ? OR lower(id) LIKE ?
		 ORDER BY name`, like, like,
	)
	if err != nil {
		return nil, fmt.Errorf("searching customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		var phone, email sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &phone, &email, &c.LastModified); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		c.Phone = phone.String
		c.Email = email.String
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateCustomer updates the supplied fields of a customer. Nil fields are
// left unchanged.
func UpdateCustomer(ctx context.Context, db *sql.DB, id string, upd model.CustomerUpdate) error {
	var sets []string
	var args []any

	if upd.Name != nil {
		if *upd.Name == "" {
			return fmt.Errorf("%w: customer name cannot be empty", model.ErrValidation)
		}
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, nullable(*upd.Phone))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullable(*upd.Email))
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "last_modified = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := db.ExecContext(ctx,
		`UPDATE customers SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("customer %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteCustomer removes a customer. Assignment history cascades away with
// it; serial units the customer still holds become available again.
func DeleteCustomer(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("customer %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// nullable converts an empty string to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
