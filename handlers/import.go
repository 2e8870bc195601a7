package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"p9e.in/bib/form"
	"p9e.in/bib/models"
)

// maxImportSize caps uploaded workbooks at 10 MB.
const maxImportSize = 10 << 20

// previewRows caps how many data rows ride back in the preview.
const previewRows = 5

// ImportPreviewResponse is what the admin import screen renders: the inferred
// schema plus a small sample of the data it was inferred from.
type ImportPreviewResponse struct {
	Filename string                   `json:"filename"`
	RowCount int                      `json:"row_count"`
	Columns  []string                 `json:"columns"`
	Preview  []map[string]string      `json:"preview"`
	Schema   []models.FieldDescriptor `json:"schema"`
}

// ImportPreview accepts an XLSX or CSV upload and responds with a schema
// inferred from its columns. Nothing is persisted; the admin reviews the
// schema before assigning it to a terminal on the backend.
// POST /api/admin/import-xlsx
func ImportPreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var (
		fields []models.FieldDescriptor
		rows   [][]string
	)
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		fields, rows, err = form.InferFromCSV(file)
	case ".xlsx", ".xlsm":
		fields, rows, err = form.InferFromXLSX(file)
	default:
		http.Error(w, "unsupported file type, expected .xlsx or .csv", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		log.Printf("❌ import preview for %s failed: %v", header.Filename, err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	resp := ImportPreviewResponse{
		Filename: header.Filename,
		RowCount: len(rows),
		Columns:  columns,
		Preview:  samplePreview(columns, rows),
		Schema:   fields,
	}
	log.Printf("📥 import preview: %s, %d rows, %d columns", header.Filename, resp.RowCount, len(columns))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func samplePreview(columns []string, rows [][]string) []map[string]string {
	n := len(rows)
	if n > previewRows {
		n = previewRows
	}
	preview := make([]map[string]string, 0, n)
	for _, row := range rows[:n] {
		m := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				m[col] = row[i]
			} else {
				m[col] = ""
			}
		}
		preview = append(preview, m)
	}
	return preview
}
