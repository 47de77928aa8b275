package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"smart-shopper/internal/models"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name of the downloadable inventory template.
const TemplateSheet = "InventoryTemplate"

var templateHeader = []any{"Barcode", "Name", "Price", "Category", "Description"}

// ParseSheet reads an .xlsx or .csv upload into bulk records. Columns are matched by header
// name, case-insensitively, so their order does not matter.
func ParseSheet(filename string, r io.Reader) ([]BulkRecord, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = csv.NewReader(r).ReadAll()
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", models.ErrInvalidInput, filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", models.ErrInvalidInput)
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["barcode"]; !ok {
		return nil, fmt.Errorf("%w: missing barcode column", models.ErrInvalidInput)
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]BulkRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := BulkRecord{
			Barcode:     cell(row, "barcode"),
			Name:        cell(row, "name"),
			Price:       parsePrice(cell(row, "price")),
			Category:    cell(row, "category"),
			Description: cell(row, "description"),
		}
		if rec.Barcode == "" && rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// parsePrice accepts "2500" and "2500.00"; anything unparseable is treated as missing.
func parsePrice(s string) *int64 {
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	v := int64(math.Round(f))
	return &v
}

// WriteTemplate writes an .xlsx with the expected header and one sample row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &templateHeader); err != nil {
		return err
	}
	sample := []any{"123456789", "Sample Product", 1500, "Beverage", "Optional description"}
	if err := f.SetSheetRow(TemplateSheet, "A2", &sample); err != nil {
		return err
	}
	return f.Write(w)
}
