package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"p9e.in/bib/client"
	"p9e.in/bib/form"
	"p9e.in/bib/models"
)

// Submit runs the currently attached submit handler. Local validation
// failures and geofence rejections leave the form interactive and report
// through the status line with a nil error; only transport-level failures
// return an error.
func (s *FormSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	fn := s.submit
	s.mu.Unlock()
	if fn == nil {
		return ErrNoSubmitHandler
	}
	return fn(ctx)
}

// submitSingle sends one inspection built from the rendered control values
// plus the status block. Validation order: terminal, damage note, coordinate,
// geofence gate. On success the whole session resets.
func (s *FormSession) submitSingle(ctx context.Context) error {
	s.setStatus("Mengirim data inspeksi...", false)

	s.mu.Lock()
	terminalID := s.terminalID
	status := models.StatusBagus
	var keterangan string
	if sg := s.view.StatusGroup; sg != nil {
		if sg.Status != "" {
			status = sg.Status
		}
		keterangan = trimmed(sg.Keterangan)
	}
	point := s.point
	data := s.view.Values()
	s.mu.Unlock()

	if terminalID == 0 {
		s.setStatus("Pilih terminal terlebih dahulu.", false)
		return nil
	}
	if status == models.StatusRusak && keterangan == "" {
		s.setStatus("Isi keterangan kerusakan.", false)
		return nil
	}
	if point == nil || !point.Valid() {
		s.setStatus("Ambil lokasi terlebih dahulu.", false)
		return nil
	}
	if msg := s.verifyGate(ctx, *point); msg != "" {
		s.setStatus(msg, false)
		return nil
	}

	data["status"] = status
	data["keterangan"] = keterangan
	lat, lon := point.Lat, point.Lon
	payload := models.InspectionPayload{
		TerminalID: terminalID,
		Lat:        &lat,
		Lon:        &lon,
		Data:       data,
	}

	created, err := s.api.SubmitInspection(ctx, payload)
	switch {
	case err == nil:
		if created != nil {
			log.Printf("✅ inspection %d created", created.ID)
		}
		s.setStatus("Inspeksi berhasil dikirim.", true)
		s.Reset()
		return nil
	case errors.Is(err, client.ErrSubmitUnavailable):
		s.setStatus("Endpoint pengiriman belum tersedia di server.", false)
		s.warn("Endpoint pengiriman belum tersedia")
		return nil
	default:
		log.Printf("inspection submit failed: %v", err)
		s.setStatus(fmt.Sprintf("Gagal mengirim: %v", err), false)
		return err
	}
}

// submitBulk sends one normalized row per checklist item. Row validation runs
// before any network call; the geofence gate applies here exactly as in
// single mode. On success the status reports the created row count and the
// session resets.
func (s *FormSession) submitBulk(ctx context.Context, lokasiID, areaID int64) error {
	s.setStatus("Mengirim data inspeksi...", false)

	// Snapshot the rows under the lock so concurrent row edits cannot tear
	// the payload.
	s.mu.Lock()
	point := s.point
	hasChecklist := s.view.Checklist != nil
	var shift string
	var rows []form.ChecklistRow
	if hasChecklist {
		shift = s.view.Checklist.Shift
		rows = make([]form.ChecklistRow, len(s.view.Checklist.Rows))
		for i, row := range s.view.Checklist.Rows {
			rows[i] = *row
		}
	}
	s.mu.Unlock()

	if !hasChecklist {
		return ErrNoChecklist
	}
	if point == nil || !point.Valid() {
		s.setStatus("Ambil lokasi terlebih dahulu.", false)
		return nil
	}

	items := make([]models.BulkItem, 0, len(rows))
	for _, row := range rows {
		status := row.Status
		if status == "" {
			status = models.StatusBagus
		}
		if status == models.StatusRusak && trimmed(row.Catatan) == "" {
			s.setStatus("Isi keterangan kerusakan untuk item rusak.", false)
			return nil
		}
		var catatan *string
		if row.Catatan != "" {
			c := row.Catatan
			catatan = &c
		}
		items = append(items, models.BulkItem{
			ItemID:  row.ItemID,
			Status:  status,
			Catatan: catatan,
		})
	}

	if msg := s.verifyGate(ctx, *point); msg != "" {
		s.setStatus(msg, false)
		return nil
	}

	var shiftPtr *string
	if shift != "" {
		sh := shift
		shiftPtr = &sh
	}
	payload := models.BulkInspectionPayload{
		LokasiID: lokasiID,
		AreaID:   areaID,
		Shift:    shiftPtr,
		Lat:      point.Lat,
		Lon:      point.Lon,
		Items:    items,
	}

	res, err := s.api.SubmitBulk(ctx, payload)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			// Backend rejected the batch; surface its detail and keep the
			// form interactive. A rejection without a detail body gets the
			// generic failure message.
			msg := apiErr.Detail
			if msg == "" {
				msg = "Gagal menyimpan"
			}
			s.setStatus(msg, false)
			return nil
		}
		log.Printf("bulk submit failed: %v", err)
		s.setStatus("Gagal menyimpan", false)
		return err
	}

	s.setStatus(fmt.Sprintf("Tersimpan %d baris.", res.Created), true)
	s.Reset()
	return nil
}
