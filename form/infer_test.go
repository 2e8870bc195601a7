package form

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInferSchema(t *testing.T) {
	columns := []string{"Nama", "Suhu", "Status"}
	rows := [][]string{
		{"Pompa 1", "36.5", "Bagus"},
		{"Pompa 2", "40", "Rusak"},
		{"Genset", "38.1", "Bagus"},
	}

	fields := InferSchema(columns, rows)
	require.Len(t, fields, 3)

	// low-cardinality text column becomes a select in first-seen order
	assert.Equal(t, "select", fields[0].Type)
	assert.Equal(t, "number", fields[1].Type)
	assert.Equal(t, "select", fields[2].Type)
	require.Len(t, fields[2].Options, 2)
	assert.Equal(t, "Bagus", fields[2].Options[0].Value)
	assert.Equal(t, "Rusak", fields[2].Options[1].Value)
}

func TestInferSchemaHighCardinalityStaysText(t *testing.T) {
	columns := []string{"Serial"}
	var rows [][]string
	for i := 0; i < maxSelectOptions+1; i++ {
		rows = append(rows, []string{"SN-" + strings.Repeat("x", i+1)})
	}

	fields := InferSchema(columns, rows)
	require.Len(t, fields, 1)
	assert.Equal(t, "text", fields[0].Type)
	assert.Empty(t, fields[0].Options)
}

func TestInferSchemaEmptyColumnStaysText(t *testing.T) {
	fields := InferSchema([]string{"Kosong"}, [][]string{{""}, {"  "}})
	require.Len(t, fields, 1)
	assert.Equal(t, "text", fields[0].Type)
}

func TestInferFromCSV(t *testing.T) {
	csvData := "Nama,Jumlah\nPompa,2\nGenset,1\n"

	fields, rows, err := InferFromCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Nama", fields[0].Name)
	assert.Equal(t, "number", fields[1].Type)
	assert.Len(t, rows, 2)
}

func TestInferFromCSVEmpty(t *testing.T) {
	_, _, err := InferFromCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestInferFromXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetList()[0]
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"Nama", "Jumlah"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"Pompa", 2}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]any{"Genset", 1}))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	fields, rows, err := InferFromXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Nama", fields[0].Name)
	assert.Equal(t, "number", fields[1].Type)
	assert.Len(t, rows, 2)
}

func TestInferFromXLSXEmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, excelize.NewFile().Write(&buf))

	_, _, err := InferFromXLSX(&buf)
	assert.Error(t, err)
}
