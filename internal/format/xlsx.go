package format

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

func init() {
	Register("xlsx", func() Serializer { return XLSX{} })
}

// SheetName is the worksheet that receives the records.
const SheetName = "Records"

// XLSX renders records as a spreadsheet: a bold header row with every field
// name in first-seen order, then one row per record. Fields a record lacks
// are left blank and nil records are skipped.
type XLSX struct{}

// Name implements Serializer.
func (XLSX) Name() string { return "xlsx" }

// Extension implements Serializer.
func (XLSX) Extension() string { return "xlsx" }

// Serialize implements Serializer.
func (XLSX) Serialize(records core.RecordSet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	columns := columnOrder(records)
	for i, name := range columns {
		if err := setCell(f, i+1, 1, name); err != nil {
			return nil, err
		}
	}

	if len(columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
			return nil, err
		}
	}

	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	widths := make([]int, len(columns))
	for i, name := range columns {
		widths[i] = len([]rune(name))
	}

	row := 1
	for _, rec := range records {
		if rec == nil {
			continue
		}
		row++
		for _, e := range rec.Entries() {
			col := index[e.Name]
			if err := setCell(f, col+1, row, e.Value); err != nil {
				return nil, err
			}
			if n := len([]rune(e.Value)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	// Approximate auto-fit
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w + 2)
		if width < 10 {
			width = 10
		}
		if width > 60 {
			width = 60
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// columnOrder returns every field name in the order first seen.
func columnOrder(records core.RecordSet) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		for _, name := range rec.Names() {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// setCell writes value as text so codes like "001" keep their zeros.
func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStr(SheetName, cell, value)
}
