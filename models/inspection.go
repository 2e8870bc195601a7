package models

import "math"

// Inspection status values used by both submission modes.
const (
	StatusBagus = "Bagus"
	StatusRusak = "Rusak"
)

// Shifts lists the selectable work shifts for a checklist, in display order.
var Shifts = []string{"Pagi", "Siang", "Malam"}

// GeoPoint is a captured device coordinate. Both members must be finite for
// the point to be usable; submission is blocked otherwise.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite numbers.
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// InspectionPayload is the single-item submission body.
type InspectionPayload struct {
	TerminalID int64          `json:"terminal_id"`
	Lat        *float64       `json:"lat"`
	Lon        *float64       `json:"lon"`
	Data       map[string]any `json:"data"`
}

// InspectionResult is the created row echoed back by the backend after a
// single-item submission.
type InspectionResult struct {
	ID        int64    `json:"id"`
	CreatedAt JSONTime `json:"created_at"`
}

// BulkItem is one checklist row inside a bulk submission. Catatan must be
// filled whenever Status is Rusak; the engine rejects the batch otherwise.
type BulkItem struct {
	ItemID  int64   `json:"item_id"`
	Status  string  `json:"status"`
	Catatan *string `json:"catatan"`
}

// BulkInspectionPayload is the checklist-mode submission body.
type BulkInspectionPayload struct {
	LokasiID int64      `json:"lokasi_id"`
	AreaID   int64      `json:"area_id"`
	Shift    *string    `json:"shift"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Items    []BulkItem `json:"items"`
}

// BulkResult is the backend's answer to a bulk submission.
type BulkResult struct {
	Created int `json:"created"`
}

// VerifyRequest asks the backend whether a point is inside the geofence of a
// lokasi. LokasiID is preferred; LokasiName is the fallback when the id has
// not been resolved yet.
type VerifyRequest struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	LokasiID   *int64  `json:"lokasi_id,omitempty"`
	LokasiName string  `json:"lokasi_name,omitempty"`
}

// VerifyResult is the backend's geofence verdict.
type VerifyResult struct {
	Valid bool `json:"valid"`
}
