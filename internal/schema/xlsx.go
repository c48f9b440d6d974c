// =============================================================================
// xeroizer - XLSX Schema Templates
// =============================================================================
//
// Model schemas can be maintained in a spreadsheet. Each data row declares one
// field; rows are grouped into models by the first column, in sheet order.
//
// TEMPLATE STRUCTURE (default columns):
//
//   | A      | B          | C          | D             | E        | F          | G          |
//   |--------|------------|------------|---------------|----------|------------|------------|
//   | Model  | Field      | API Name   | Internal Name | Type     | Model Name | Calculated |
//   | Widget | widget_id  | WidgetID   |               | guid     |            |            |
//   | Widget | name       |            |               | string   |            |            |
//   | Widget | parts      |            |               | has_many | Part       |            |
//   | Widget | total      |            |               | decimal  |            | yes        |
//
// Empty API Name and Internal Name cells fall back to the defaults derived
// from the field key. Every sheet whose name does not start with "_" is read.
//
// =============================================================================

package schema

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateColumns defines which columns of a template hold which data.
// Column indices are 0-based (A=0, B=1, ...).
type TemplateColumns struct {
	ModelColumn        int
	KeyColumn          int
	APINameColumn      int
	InternalNameColumn int
	TypeColumn         int
	ModelNameColumn    int
	CalculatedColumn   int

	// DataStartRow is the first data row (0-based). Rows above it are headers.
	DataStartRow int
}

// DefaultTemplateColumns returns the column layout documented above.
func DefaultTemplateColumns() TemplateColumns {
	return TemplateColumns{
		ModelColumn:        0, // Column A
		KeyColumn:          1, // Column B
		APINameColumn:      2, // Column C
		InternalNameColumn: 3, // Column D
		TypeColumn:         4, // Column E
		ModelNameColumn:    5, // Column F
		CalculatedColumn:   6, // Column G
		DataStartRow:       1, // Row 2
	}
}

var templateHeader = []interface{}{
	"Model", "Field", "API Name", "Internal Name", "Type", "Model Name", "Calculated",
}

// =============================================================================
// READING
// =============================================================================

// LoadXLSX reads model schemas from an XLSX template.
func LoadXLSX(path string) ([]*Schema, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()

	schemas, err := parseWorkbook(f, DefaultTemplateColumns())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schemas, nil
}

// ParseXLSX reads model schemas from an XLSX template stream.
func ParseXLSX(r io.Reader, columns TemplateColumns) ([]*Schema, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, columns)
}

func parseWorkbook(f *excelize.File, columns TemplateColumns) ([]*Schema, error) {
	var defs []*Definition
	byName := make(map[string]*Definition)

	for _, sheet := range f.GetSheetList() {
		if strings.HasPrefix(sheet, "_") {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: failed to read rows: %w", sheet, err)
		}

		for i := columns.DataStartRow; i < len(rows); i++ {
			row := rows[i]
			if isRowEmpty(row) {
				continue
			}

			model, fd := parseRow(row, columns)
			if model == "" || fd.Key == "" {
				return nil, fmt.Errorf("sheet %q row %d: model and field are required", sheet, i+1)
			}

			def, ok := byName[model]
			if !ok {
				def = &Definition{Name: model}
				byName[model] = def
				defs = append(defs, def)
			}
			def.Fields = append(def.Fields, fd)
		}
	}

	schemas := make([]*Schema, 0, len(defs))
	for _, def := range defs {
		s, err := def.Build()
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}

	return schemas, nil
}

// parseRow extracts the model name and field definition from one row.
func parseRow(row []string, columns TemplateColumns) (string, FieldDefinition) {
	cell := func(index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	return cell(columns.ModelColumn), FieldDefinition{
		Key:          cell(columns.KeyColumn),
		APIName:      cell(columns.APINameColumn),
		InternalName: cell(columns.InternalNameColumn),
		Type:         cell(columns.TypeColumn),
		Model:        cell(columns.ModelNameColumn),
		Calculated:   isYes(cell(columns.CalculatedColumn)),
	}
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isYes(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "y", "true", "1", "x", "calculated":
		return true
	}
	return false
}

// =============================================================================
// WRITING
// =============================================================================

// WriteXLSX renders schemas as a template workbook with a single sheet,
// using the default column layout. The result can be read back by LoadXLSX.
func WriteXLSX(w io.Writer, schemas []*Schema) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &templateHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, s := range schemas {
		for _, fd := range Describe(s).Fields {
			calculated := ""
			if fd.Calculated {
				calculated = "yes"
			}
			values := []interface{}{
				s.Name(), fd.Key, fd.APIName, fd.InternalName, fd.Type, fd.Model, calculated,
			}

			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write %s.%s: %w", s.Name(), fd.Key, err)
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
