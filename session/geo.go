package session

import (
	"context"
	"fmt"
	"log"

	"p9e.in/bib/models"
	"p9e.in/bib/utils"
)

// Locator produces a device coordinate. A nil locator means the device has no
// positioning source and must post coordinates itself.
type Locator interface {
	Capture(ctx context.Context) (models.GeoPoint, error)
}

// CaptureLocation asks the locator for a fresh coordinate, bounded by the
// session's geo timeout, then stores it and runs the advisory geofence check.
// All outcomes are reported through the geo note; capture never errors out.
func (s *FormSession) CaptureLocation(ctx context.Context) {
	if s.locator == nil {
		s.setGeoNote("Geolokasi tidak didukung peramban ini.", false)
		return
	}
	s.setGeoNote("Mengambil lokasi...", false)

	cctx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	defer cancel()
	p, err := s.locator.Capture(cctx)
	if err != nil {
		s.setGeoNote(fmt.Sprintf("Gagal mengambil lokasi: %v", err), false)
		return
	}
	s.SetLocation(ctx, p)
}

// SetLocation stores a device-supplied coordinate and runs the advisory
// geofence verification against the currently selected lokasi.
func (s *FormSession) SetLocation(ctx context.Context, p models.GeoPoint) {
	if err := utils.ValidateCoordinate(p); err != nil {
		s.setGeoNote(fmt.Sprintf("Gagal mengambil lokasi: %v", err), false)
		return
	}
	s.mu.Lock()
	pt := p
	s.point = &pt
	s.distanceM = nil
	s.distanceTo = ""
	s.mu.Unlock()
	s.setGeoNote(fmt.Sprintf("Lokasi: %.6f, %.6f", p.Lat, p.Lon), true)
	s.verifyAdvisory(ctx, p)
}

// verifyAdvisory checks the coordinate against the backend geofence at
// capture time. The verdict only updates the geo note; submission re-runs the
// gate regardless, so a failure here never blocks anything.
func (s *FormSession) verifyAdvisory(ctx context.Context, p models.GeoPoint) {
	req, lokasi := s.buildVerifyRequest(ctx, p)

	if lokasi != nil {
		if d, ok := utils.DistanceToLokasi(p, *lokasi); ok {
			s.mu.Lock()
			s.distanceM = &d
			s.distanceTo = lokasi.NamaLokasi
			s.mu.Unlock()
			if inside, known := utils.WithinLokasiRadius(p, *lokasi); known && !inside {
				log.Printf("point is %.0fm from %s, outside the registered radius", d, lokasi.NamaLokasi)
			}
		}
	}

	res, err := s.api.VerifyLocation(ctx, req)
	if err != nil {
		log.Printf("location verify failed: %v", err)
		s.warn("Gagal verifikasi lokasi")
		return
	}
	if res.Valid {
		s.setGeoNote("Lokasi terverifikasi ✔️", true)
	} else {
		s.setGeoNote("Di luar jangkauan lokasi (geofence).", false)
	}
}

// verifyGate is the mandatory submission-time geofence gate. It returns the
// empty string when the backend confirms the point, and otherwise the message
// to surface: a distinct one for a rejected point versus an unreachable
// verifier.
func (s *FormSession) verifyGate(ctx context.Context, p models.GeoPoint) string {
	req, _ := s.buildVerifyRequest(ctx, p)
	res, err := s.api.VerifyLocation(ctx, req)
	if err != nil {
		log.Printf("location verify failed: %v", err)
		return "Gagal verifikasi lokasi."
	}
	if !res.Valid {
		return "Di luar jangkauan lokasi (geofence)."
	}
	return ""
}

// buildVerifyRequest assembles the verify payload for the current selection.
// The lokasi id is preferred when the selected name resolves against the
// master list; otherwise the raw name rides along as a fallback. The matched
// row is returned for the local radius pre-check.
func (s *FormSession) buildVerifyRequest(ctx context.Context, p models.GeoPoint) (models.VerifyRequest, *models.Lokasi) {
	req := models.VerifyRequest{Lat: p.Lat, Lon: p.Lon}

	s.mu.Lock()
	var name string
	if c := s.view.Get(FieldLokasi); c != nil {
		name = trimmed(c.Value)
	}
	s.mu.Unlock()
	if name == "" {
		return req, nil
	}

	list := s.ensureLokasiList(ctx)
	for i := range list {
		if list[i].NamaLokasi == name {
			id := list[i].IDLokasi
			req.LokasiID = &id
			return req, &list[i]
		}
	}
	req.LokasiName = name
	return req, nil
}
