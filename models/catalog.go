package models

import "encoding/json"

// Terminal is one row of the terminal registry.
type Terminal struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TerminalDetail is the full terminal record including its form schema. Older
// backends serve the schema under "schema" instead of "form_schema"; RawSchema
// hides that difference.
type TerminalDetail struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	FormSchema json.RawMessage `json:"form_schema,omitempty"`
	Schema     json.RawMessage `json:"schema,omitempty"`
}

// RawSchema returns the schema payload, preferring form_schema.
func (t TerminalDetail) RawSchema() json.RawMessage {
	if len(t.FormSchema) > 0 && string(t.FormSchema) != "null" {
		return t.FormSchema
	}
	return t.Schema
}

// Lokasi is one row of the lokasi master list. Latitude, longitude and radius
// are optional; when present they describe the geofence around the lokasi.
type Lokasi struct {
	IDLokasi   int64    `json:"id_lokasi"`
	NamaLokasi string   `json:"nama_lokasi"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	RadiusM    *int     `json:"radius_m,omitempty"`
}

// Area is one area within a lokasi.
type Area struct {
	IDArea   int64  `json:"id_area"`
	NamaArea string `json:"nama_area"`
}

// Item is one inspectable item within an area.
type Item struct {
	IDItem   int64  `json:"id_item"`
	NamaItem string `json:"nama_item"`
}
