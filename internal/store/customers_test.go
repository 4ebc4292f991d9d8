package store

import (
	"context"
	"errors"
	"testing"

	"github.com/georgemallousis-design/MyWarehouse/internal/db"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

func TestCreateAndGetCustomer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	c, err := CreateCustomer(ctx, database, "0001", "Alpha Security", "555-0100", "alpha@example.com")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.ID != "0001" || c.Name != "Alpha Security" {
		t.Errorf("unexpected customer: %+v", c)
	}

	got, err := GetCustomer(ctx, database, "0001")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if got == nil || got.Phone != "555-0100" || got.Email != "alpha@example.com" {
		t.Errorf("unexpected customer: %+v", got)
	}

	missing, err := GetCustomer(ctx, database, "9999")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing customer")
	}
}

func TestCreateCustomerConflict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateCustomer(ctx, database, "0001", "First", "", ""); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	_, err := CreateCustomer(ctx, database, "0001", "Second", "", "")
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate id, got %v", err)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateCustomer(ctx, database, "", "No ID", "", ""); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation for empty id, got %v", err)
	}
	if _, err := CreateCustomer(ctx, database, "0002", "", "", ""); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation for empty name, got %v", err)
	}
}

func TestSearchCustomers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateCustomer(ctx, database, "0001", "Alpha Security", "", "")
	CreateCustomer(ctx, database, "0002", "Beta Stores", "", "")
	CreateCustomer(ctx, database, "7701", "Gamma", "", "")

	byName, err := SearchCustomers(ctx, database, "alpha")
	if err != nil {
		t.Fatalf("SearchCustomers: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "0001" {
		t.Errorf("expected only Alpha, got %+v", byName)
	}

	byID, err := SearchCustomers(ctx, database, "77")
	if err != nil {
		t.Fatalf("SearchCustomers: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != "7701" {
		t.Errorf("expected only 7701, got %+v", byID)
	}

	all, err := SearchCustomers(ctx, database, "")
	if err != nil {
		t.Fatalf("SearchCustomers: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 customers, got %d", len(all))
	}
}

func TestUpdateCustomer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateCustomer(ctx, database, "0001", "Old Name", "555", "")

	name := "New Name"
	email := "new@example.com"
	err := UpdateCustomer(ctx, database, "0001", model.CustomerUpdate{Name: &name, Email: &email})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}

	got, _ := GetCustomer(ctx, database, "0001")
	if got.Name != "New Name" || got.Email != "new@example.com" {
		t.Errorf("unexpected customer after update: %+v", got)
	}
	// Unsupplied fields stay put.
	if got.Phone != "555" {
		t.Errorf("phone should be unchanged, got %q", got.Phone)
	}

	// Empty update is a no-op, not an error.
	if err := UpdateCustomer(ctx, database, "0001", model.CustomerUpdate{}); err != nil {
		t.Errorf("empty update: %v", err)
	}

	err = UpdateCustomer(ctx, database, "missing", model.CustomerUpdate{Name: &name})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCustomerCascadesHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateCustomer(ctx, database, "0001", "Holder", "", "")
	mat, _ := CreateMaterial(ctx, database, &model.Material{Name: "Camera", Model: "DS-2CD2343G2-I"})
	AddSerials(ctx, database, mat.ID, []string{"CAM1"}, AddSerialsOptions{})
	if err := AssignSerial(ctx, database, "0001", "CAM1"); err != nil {
		t.Fatalf("AssignSerial: %v", err)
	}

	if err := DeleteCustomer(ctx, database, "0001"); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}

	history, _ := GetSerialHistory(ctx, database, "CAM1")
	if len(history) != 0 {
		t.Errorf("expected history to cascade away, got %d records", len(history))
	}

	// The serial is released back to available.
	serial, _ := GetSerial(ctx, database, "CAM1")
	if serial == nil || !serial.Available() {
		t.Errorf("expected serial to be available after customer delete, got %+v", serial)
	}

	if err := DeleteCustomer(ctx, database, "0001"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
