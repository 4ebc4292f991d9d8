// Package exchange imports and exports the materials catalog as CSV.
package exchange

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// exportHeader is the column layout written by Export and accepted by
// Import. Import matches columns by header name, so partial files with at
// least name and model also load.
var exportHeader = []string{
	"name", "model", "producer", "description",
	"retail_price", "warranty_months", "category", "serials",
}

// Import loads materials from CSV. Each row creates a material, registers
// its serial units (split on newlines or commas within the serials column)
// and runs autocategorization. Rows that fail are logged and skipped.
// Returns the number of materials created.
func Import(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return 0, fmt.Errorf("%w: CSV header missing name column", model.ErrValidation)
	}
	if _, ok := columns["model"]; !ok {
		return 0, fmt.Errorf("%w: CSV header missing model column", model.ErrValidation)
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		if err := importRow(ctx, db, columns, record); err != nil {
			slog.Error("skipping CSV row", "line", line, "error", err)
			continue
		}
		imported++
	}
	return imported, nil
}

func importRow(ctx context.Context, db *sql.DB, columns map[string]int, record []string) error {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	m := &model.Material{
		Name:        field("name"),
		Model:       field("model"),
		Producer:    field("producer"),
		Description: field("description"),
		Category:    field("category"),
	}
	if s := field("retail_price"); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parsing retail price %q: %w", s, err)
		}
		m.RetailPrice = &price
	}
	if s := field("warranty_months"); s != "" {
		months, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("parsing warranty months %q: %w", s, err)
		}
		m.WarrantyMonths = &months
	}

	created, err := store.CreateMaterial(ctx, db, m)
	if err != nil {
		return err
	}
	if m.Category != "" {
		if err := store.SetMaterialCategory(ctx, db, created.ID, m.Category); err != nil {
			return fmt.Errorf("setting category: %w", err)
		}
	}

	if serials := splitSerials(field("serials")); len(serials) > 0 {
		if _, err := store.AddSerials(ctx, db, created.ID, serials, store.AddSerialsOptions{}); err != nil {
			return fmt.Errorf("adding serials: %w", err)
		}
	}

	if _, err := store.AutocategorizeMaterial(ctx, db, created.ID); err != nil {
		return fmt.Errorf("categorizing: %w", err)
	}
	return nil
}

// splitSerials accepts serial lists separated by newlines or commas.
func splitSerials(s string) []string {
	var serials []string
	for _, chunk := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	}) {
		if chunk = strings.TrimSpace(chunk); chunk != "" {
			serials = append(serials, chunk)
		}
	}
	return serials
}

// Export writes the catalog for one stock side (new or used) as CSV,
// including each material's serial units.
func Export(ctx context.Context, db *sql.DB, w io.Writer, used bool) error {
	materials, err := store.ListMaterials(ctx, db, used, "", "")
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, m := range materials {
		serials, err := store.ListSerialsByMaterial(ctx, db, m.ID, true)
		if err != nil {
			return err
		}
		numbers := make([]string, len(serials))
		for i, s := range serials {
			numbers[i] = s.Serial
		}

		record := []string{
			m.Name, m.Model, m.Producer, m.Description,
			formatFloat(m.RetailPrice), formatInt(m.WarrantyMonths),
			m.Category, strings.Join(numbers, "\n"),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
