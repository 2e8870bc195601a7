package session

import (
	"context"
	"log"
	"strconv"

	"p9e.in/bib/form"
	"p9e.in/bib/models"
)

// resolveLokasiChange runs the full cascade for the current Lokasi selection:
// name → id resolution, freezing the id field, repopulating Area, then the
// item select or checklist. A backend failure mid-chain stalls the cascade
// where it stands; the already-rendered controls stay untouched.
func (s *FormSession) resolveLokasiChange(ctx context.Context) {
	s.mu.Lock()
	token := s.nextTokenLocked()
	lokasiCtrl := s.view.Get(FieldLokasi)
	if lokasiCtrl == nil {
		s.mu.Unlock()
		return
	}
	selectedName := lokasiCtrl.Value
	s.mu.Unlock()

	list := s.ensureLokasiList(ctx)
	id, found := ResolveLokasiID(list, selectedName)

	s.mu.Lock()
	if s.stale(token) {
		s.mu.Unlock()
		return
	}
	s.areaID = nil
	if found {
		s.lokasiID = &id
		s.state = StateLocationSelected
	} else {
		s.lokasiID = nil
		s.state = StateNoLocation
	}
	s.freezeLokasiIDLocked()
	hasArea := s.view.Get(FieldArea) != nil
	hasItem := s.view.Get(FieldItem) != nil
	s.mu.Unlock()

	if !found {
		return
	}

	switch {
	case hasArea:
		areas, err := s.api.Areas(ctx, id)
		if err != nil {
			log.Printf("areas fetch for lokasi %d failed: %v", id, err)
			return
		}
		opts := make([]models.FieldOption, 0, len(areas))
		for _, a := range areas {
			opts = append(opts, models.FieldOption{Value: a.NamaArea, Label: a.NamaArea})
		}
		s.mu.Lock()
		if s.stale(token) {
			s.mu.Unlock()
			return
		}
		if areaCtrl := s.view.Get(FieldArea); areaCtrl != nil {
			areaCtrl.SetOptions(opts)
		}
		s.state = StateAreaResolved
		s.mu.Unlock()
		s.populateItems(ctx, id, token)
		s.renderChecklist(ctx, id, token)
	case hasItem:
		items, err := s.api.LokasiItems(ctx, id)
		if err != nil {
			log.Printf("items fetch for lokasi %d failed: %v", id, err)
			return
		}
		s.setItemOptions(items, token)
	}
}

// resolveAreaChange re-resolves the downstream fields after the user picks a
// different area under the same lokasi.
func (s *FormSession) resolveAreaChange(ctx context.Context) {
	s.mu.Lock()
	token := s.nextTokenLocked()
	lokasiCtrl := s.view.Get(FieldLokasi)
	if lokasiCtrl == nil {
		s.mu.Unlock()
		return
	}
	selectedName := lokasiCtrl.Value
	s.mu.Unlock()

	list := s.ensureLokasiList(ctx)
	id, found := ResolveLokasiID(list, selectedName)
	if !found {
		return
	}
	s.populateItems(ctx, id, token)
	s.renderChecklist(ctx, id, token)
}

// freezeLokasiIDLocked destructively replaces the ID_Lokasi control with a
// read-only copy holding the resolved id. The id must never be hand-edited;
// replacing the control also drops any listeners a prior render attached.
func (s *FormSession) freezeLokasiIDLocked() {
	existing := s.view.Get(FieldLokasiID)
	if existing == nil {
		return
	}
	value := ""
	if s.lokasiID != nil {
		value = strconv.FormatInt(*s.lokasiID, 10)
	}
	s.view.Replace(FieldLokasiID, &form.Control{
		Name:      FieldLokasiID,
		Label:     existing.Label,
		Kind:      form.KindText,
		InputType: "text",
		Value:     value,
		ReadOnly:  true,
	})
}

// populateItems refills the single-item select with the items of the
// currently selected area. The area id is looked up again from its display
// name on every pass rather than being carried alongside it.
func (s *FormSession) populateItems(ctx context.Context, lokasiID int64, token uint64) {
	s.mu.Lock()
	areaCtrl := s.view.Get(FieldArea)
	itemCtrl := s.view.Get(FieldItem)
	if areaCtrl == nil || itemCtrl == nil {
		s.mu.Unlock()
		return
	}
	selectedArea := areaCtrl.Value
	s.mu.Unlock()

	area, err := s.findArea(ctx, lokasiID, selectedArea)
	if err != nil || area == nil {
		return
	}
	items, err := s.api.AreaItems(ctx, area.IDArea)
	if err != nil {
		log.Printf("items fetch for area %d failed: %v", area.IDArea, err)
		return
	}
	s.setItemOptions(items, token)
}

// renderChecklist switches the form into bulk mode for the selected area: the
// single-item select is hidden, the status block removed, one row rendered
// per item and the bulk submit handler attached in place of the single one.
func (s *FormSession) renderChecklist(ctx context.Context, lokasiID int64, token uint64) {
	s.mu.Lock()
	areaCtrl := s.view.Get(FieldArea)
	if areaCtrl == nil {
		s.mu.Unlock()
		return
	}
	selectedArea := areaCtrl.Value
	s.mu.Unlock()

	area, err := s.findArea(ctx, lokasiID, selectedArea)
	if err != nil || area == nil {
		return
	}
	items, err := s.api.AreaItems(ctx, area.IDArea)
	if err != nil {
		log.Printf("checklist items fetch for area %d failed: %v", area.IDArea, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(token) {
		return
	}
	s.view.Hide(FieldItem)
	s.view.StatusGroup = nil
	rows := make([]*form.ChecklistRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, &form.ChecklistRow{
			ItemID: it.IDItem,
			Name:   it.NamaItem,
			Status: models.StatusBagus,
		})
	}
	s.view.Checklist = &form.Checklist{Shift: models.Shifts[0], Rows: rows}

	areaID := area.IDArea
	s.areaID = &areaID
	s.state = StateItemsReady
	s.mode = ModeBulk
	s.submit = func(ctx context.Context) error {
		return s.submitBulk(ctx, lokasiID, areaID)
	}
}

// findArea resolves an area display name to its catalog row under a lokasi.
func (s *FormSession) findArea(ctx context.Context, lokasiID int64, name string) (*models.Area, error) {
	areas, err := s.api.Areas(ctx, lokasiID)
	if err != nil {
		log.Printf("areas fetch for lokasi %d failed: %v", lokasiID, err)
		return nil, err
	}
	for i := range areas {
		if areas[i].NamaArea == name {
			return &areas[i], nil
		}
	}
	return nil, nil
}

func (s *FormSession) setItemOptions(items []models.Item, token uint64) {
	opts := make([]models.FieldOption, 0, len(items))
	for _, it := range items {
		opts = append(opts, models.FieldOption{
			Value: strconv.FormatInt(it.IDItem, 10),
			Label: it.NamaItem,
		})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(token) {
		return
	}
	if itemCtrl := s.view.Get(FieldItem); itemCtrl != nil {
		itemCtrl.SetOptions(opts)
	}
	s.state = StateItemsReady
}
