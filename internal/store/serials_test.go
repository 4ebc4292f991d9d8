package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/georgemallousis-design/MyWarehouse/internal/db"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

func newMaterialWithSerials(t *testing.T, database *sql.DB, serials ...string) *model.Material {
	t.Helper()
	ctx := context.Background()
	m, err := CreateMaterial(ctx, database, &model.Material{Name: "Camera 4MP", Model: "DS-2CD2343G2-I"})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if len(serials) > 0 {
		if _, err := AddSerials(ctx, database, m.ID, serials, AddSerialsOptions{}); err != nil {
			t.Fatalf("AddSerials: %v", err)
		}
	}
	return m
}

func TestAddSerialsBulk(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	m := newMaterialWithSerials(t, database)

	n, err := AddSerials(ctx, database, m.ID, []string{"S1", "S2", "S3", " ", ""}, AddSerialsOptions{
		ProductionDate: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("AddSerials: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 inserted, got %d", n)
	}

	// Duplicates are skipped, not fatal.
	n, err = AddSerials(ctx, database, m.ID, []string{"S2", "S4"}, AddSerialsOptions{})
	if err != nil {
		t.Fatalf("AddSerials with duplicate: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 inserted past the duplicate, got %d", n)
	}

	serials, _ := ListSerialsByMaterial(ctx, database, m.ID, true)
	if len(serials) != 4 {
		t.Errorf("expected 4 serials, got %d", len(serials))
	}

	_, err = AddSerials(ctx, database, 999, []string{"X"}, AddSerialsOptions{})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing material, got %v", err)
	}
}

func TestAddSerialsWarrantyExpiration(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	warranty := 24
	m, _ := CreateMaterial(ctx, database, &model.Material{
		Name: "Cam", Model: "M1", WarrantyMonths: &warranty,
	})

	AddSerials(ctx, database, m.ID, []string{"W1"}, AddSerialsOptions{AcquisitionDate: "2025-03-15"})

	s, err := GetSerial(ctx, database, "W1")
	if err != nil {
		t.Fatalf("GetSerial: %v", err)
	}
	if s.WarrantyExpiration != "2027-03-15" {
		t.Errorf("expected warranty expiration 2027-03-15, got %q", s.WarrantyExpiration)
	}

	// No dates known: no expiration derived.
	AddSerials(ctx, database, m.ID, []string{"W2"}, AddSerialsOptions{})
	s2, _ := GetSerial(ctx, database, "W2")
	if s2.WarrantyExpiration != "" {
		t.Errorf("expected empty warranty expiration, got %q", s2.WarrantyExpiration)
	}
}

func TestListSerialsByMaterial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	m := newMaterialWithSerials(t, database, "A1", "A2")
	CreateCustomer(ctx, database, "0001", "Holder", "", "")
	AssignSerial(ctx, database, "0001", "A1")

	available, _ := ListSerialsByMaterial(ctx, database, m.ID, false)
	if len(available) != 1 || available[0].Serial != "A2" {
		t.Errorf("expected only A2 available, got %+v", available)
	}

	all, _ := ListSerialsByMaterial(ctx, database, m.ID, true)
	if len(all) != 2 {
		t.Errorf("expected 2 serials, got %d", len(all))
	}
}

func TestResolveSerialsPartition(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	newMaterialWithSerials(t, database, "R1", "R2", "R3")
	CreateCustomer(ctx, database, "0001", "Holder", "", "")
	AssignSerial(ctx, database, "0001", "R2")

	input := []string{"R1", "R2", "R3", "MISSING"}
	valid, invalid, err := ResolveSerialsForCustomer(ctx, database, input)
	if err != nil {
		t.Fatalf("ResolveSerialsForCustomer: %v", err)
	}

	if len(valid) != 2 || valid[0] != "R1" || valid[1] != "R3" {
		t.Errorf("unexpected valid set: %v", valid)
	}
	if len(invalid) != 2 || invalid[0] != "R2" || invalid[1] != "MISSING" {
		t.Errorf("unexpected invalid set: %v", invalid)
	}

	// Disjoint sets whose union equals the input.
	seen := make(map[string]int)
	for _, s := range valid {
		seen[s]++
	}
	for _, s := range invalid {
		seen[s]++
	}
	for _, s := range input {
		if seen[s] != 1 {
			t.Errorf("serial %s appears %d times across partitions", s, seen[s])
		}
	}

	valid, invalid, err = ResolveSerialsForCustomer(ctx, database, nil)
	if err != nil || valid != nil || invalid != nil {
		t.Errorf("expected empty partition for empty input, got %v / %v / %v", valid, invalid, err)
	}
}

func TestDeleteSerialsKeepsHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	m := newMaterialWithSerials(t, database, "D1", "D2")
	CreateCustomer(ctx, database, "0001", "Holder", "", "")
	AssignSerial(ctx, database, "0001", "D1")
	UnassignSerial(ctx, database, "D1")

	n, err := DeleteSerials(ctx, database, []string{"D1"})
	if err != nil {
		t.Fatalf("DeleteSerials: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	serials, _ := ListSerialsByMaterial(ctx, database, m.ID, true)
	if len(serials) != 1 || serials[0].Serial != "D2" {
		t.Errorf("expected only D2 to remain, got %+v", serials)
	}

	// History survives with its denormalized snapshot.
	history, _ := GetSerialHistory(ctx, database, "D1")
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	if history[0].MaterialName != "Camera 4MP" || history[0].MaterialModel != "DS-2CD2343G2-I" {
		t.Errorf("snapshot lost: %+v", history[0])
	}

	n, _ = DeleteSerials(ctx, database, nil)
	if n != 0 {
		t.Errorf("expected no-op for empty input, got %d", n)
	}
}
