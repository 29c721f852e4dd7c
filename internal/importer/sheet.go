package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Recognized column headers, matched case-insensitively.
const (
	colDNI          = "dni"
	colName         = "nombre"
	colPhone        = "telefono"
	colLocality     = "localidad"
	colInstitutions = "establecimientos"
)

// ReadRows decodes the first sheet of an xlsx workbook into ordered import
// rows. The first row is the header; columns are matched by name so the sheet
// layout is free. Institutions cells hold one or more names separated by
// commas or semicolons.
func ReadRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(raw[0]))
	for idx, header := range raw[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = idx
	}
	if _, ok := columns[colDNI]; !ok {
		return nil, fmt.Errorf("sheet %q has no %q column", sheet, colDNI)
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		rows = append(rows, Row{
			DNI:          cell(cells, columns, colDNI),
			Name:         cell(cells, columns, colName),
			Phone:        cell(cells, columns, colPhone),
			Locality:     cell(cells, columns, colLocality),
			Institutions: splitInstitutions(cell(cells, columns, colInstitutions)),
		})
	}
	return rows, nil
}

func cell(cells []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func splitInstitutions(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
