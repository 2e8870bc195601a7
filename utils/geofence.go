package utils

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"p9e.in/bib/models"
)

// DefaultRadiusM is assumed when a lokasi has coordinates but no radius.
const DefaultRadiusM = 200

// ValidateCoordinate checks that a captured point is a plausible geographic
// coordinate.
func ValidateCoordinate(p models.GeoPoint) error {
	if !p.Valid() {
		return fmt.Errorf("coordinate is not finite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", p.Lon)
	}
	return nil
}

// DistanceToLokasi returns the great-circle distance in meters from the point
// to the lokasi's registered coordinate. ok is false when the lokasi has no
// coordinate on record.
func DistanceToLokasi(p models.GeoPoint, l models.Lokasi) (meters float64, ok bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, false
	}
	d := geo.Distance(
		orb.Point{p.Lon, p.Lat},
		orb.Point{*l.Longitude, *l.Latitude},
	)
	return d, true
}

// WithinLokasiRadius reports whether the point falls inside the lokasi's
// geofence radius. known is false when the lokasi carries no coordinate, in
// which case no local judgement is possible and the backend verdict stands
// alone.
func WithinLokasiRadius(p models.GeoPoint, l models.Lokasi) (inside bool, known bool) {
	d, ok := DistanceToLokasi(p, l)
	if !ok {
		return false, false
	}
	radius := DefaultRadiusM
	if l.RadiusM != nil && *l.RadiusM > 0 {
		radius = *l.RadiusM
	}
	return d <= float64(radius), true
}
