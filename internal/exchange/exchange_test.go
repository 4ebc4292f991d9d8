package exchange

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/georgemallousis-design/MyWarehouse/internal/db"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

func TestImportMaterials(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	input := `name,model,producer,retail_price,warranty_months,serials
IP Camera 4MP,DS-2CD2343G2-I,Hikvision,119.90,24,"SN-1
SN-2,SN-3"
PoE Switch,TL-SG1005P,TP-Link,,,
`
	n, err := Import(ctx, database, strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 materials imported, got %d", n)
	}

	materials, _ := store.ListMaterials(ctx, database, false, "", "")
	if len(materials) != 2 {
		t.Fatalf("expected 2 materials in store, got %d", len(materials))
	}

	var camera *model.Material
	for i := range materials {
		if materials[i].Model == "DS-2CD2343G2-I" {
			camera = &materials[i]
		}
	}
	if camera == nil {
		t.Fatal("camera not imported")
	}
	if camera.RetailPrice == nil || *camera.RetailPrice != 119.90 {
		t.Errorf("retail price not parsed: %v", camera.RetailPrice)
	}
	if camera.WarrantyMonths == nil || *camera.WarrantyMonths != 24 {
		t.Errorf("warranty months not parsed: %v", camera.WarrantyMonths)
	}
	if camera.TotalSerials != 3 {
		t.Errorf("expected 3 serials from mixed separators, got %d", camera.TotalSerials)
	}
	// Imported rows run through the categorizer.
	if camera.AutoCategory != "Camera" {
		t.Errorf("expected auto category Camera, got %q", camera.AutoCategory)
	}
}

func TestImportSkipsBadRows(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	input := `name,model,retail_price
Valid Camera,IPC-T240,59.00
,MISSING-NAME,
Bad Price,BP-1,not-a-number
Another Valid,NVR-208,
`
	n, err := Import(ctx, database, strings.NewReader(input))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows imported past the bad ones, got %d", n)
	}
}

func TestImportRejectsMissingColumns(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := Import(context.Background(), database, strings.NewReader("name,price\nCam,5\n"))
	if err == nil {
		t.Error("expected error for header without model column")
	}
}

func TestExportRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	input := `name,model,producer,description,retail_price,warranty_months,category,serials
IP Camera 4MP,DS-2CD2343G2-I,Hikvision,Outdoor dome,119.9,24,CCTV,"SN-1,SN-2"
`
	if _, err := Import(ctx, database, strings.NewReader(input)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	var out bytes.Buffer
	if err := Export(ctx, database, &out, false); err != nil {
		t.Fatalf("Export: %v", err)
	}

	records, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	row := records[1]
	if row[0] != "IP Camera 4MP" || row[1] != "DS-2CD2343G2-I" || row[2] != "Hikvision" {
		t.Errorf("unexpected identity columns: %v", row[:3])
	}
	if row[4] != "119.9" || row[5] != "24" || row[6] != "CCTV" {
		t.Errorf("unexpected value columns: %v", row[4:7])
	}
	got := strings.Split(row[7], "\n")
	if len(got) != 2 || got[0] != "SN-1" || got[1] != "SN-2" {
		t.Errorf("unexpected serials column: %q", row[7])
	}

	// Used stock is a separate export.
	var usedOut bytes.Buffer
	if err := Export(ctx, database, &usedOut, true); err != nil {
		t.Fatalf("Export used: %v", err)
	}
	usedRecords, _ := csv.NewReader(&usedOut).ReadAll()
	if len(usedRecords) != 1 {
		t.Errorf("expected only header for used stock, got %d records", len(usedRecords))
	}
}
