package form

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"p9e.in/bib/models"
)

// maxSelectOptions caps how many distinct values a column may have before it
// stops being treated as a select field.
const maxSelectOptions = 10

// InferSchema derives a form schema from tabular data: columns whose
// non-empty values are all numeric become number fields, low-cardinality
// columns become selects seeded with their distinct values, everything else
// becomes text. Column order is preserved.
func InferSchema(columns []string, rows [][]string) []models.FieldDescriptor {
	fields := make([]models.FieldDescriptor, 0, len(columns))
	for i, col := range columns {
		values := columnValues(rows, i)
		fields = append(fields, inferField(col, values))
	}
	return fields
}

func inferField(name string, values []string) models.FieldDescriptor {
	f := models.FieldDescriptor{Name: name, Label: name, Type: "text"}
	if len(values) == 0 {
		return f
	}

	if allNumeric(values) {
		f.Type = "number"
		return f
	}

	distinct := distinctInOrder(values)
	if len(distinct) <= maxSelectOptions {
		f.Type = "select"
		opts := make([]models.FieldOption, 0, len(distinct))
		for _, v := range distinct {
			opts = append(opts, models.FieldOption{Value: v, Label: v})
		}
		f.Options = opts
	}
	return f
}

func columnValues(rows [][]string, idx int) []string {
	var values []string
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}

func distinctInOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// InferFromXLSX reads the first sheet of a workbook and infers a schema from
// its header row and data rows.
func InferFromXLSX(r io.Reader) ([]models.FieldDescriptor, [][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return inferFromTable(rows)
}

// InferFromCSV infers a schema from CSV data with a header row.
func InferFromCSV(r io.Reader) ([]models.FieldDescriptor, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return inferFromTable(rows)
}

func inferFromTable(rows [][]string) ([]models.FieldDescriptor, [][]string, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file has no rows")
	}
	columns := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		columns[i] = strings.TrimSpace(c)
	}
	data := rows[1:]
	return InferSchema(columns, data), data, nil
}
