// Package session holds the form-session engine: schema-driven rendering,
// the Lokasi → Area → Item cascade, location capture with geofence
// verification, and both submission modes.
package session

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"p9e.in/bib/client"
	"p9e.in/bib/form"
	"p9e.in/bib/models"
)

// Field names that must reference catalog rows. Whatever the schema declares,
// these are forced into selects populated from the backend.
const (
	FieldLokasi   = "Lokasi"
	FieldLokasiID = "ID_Lokasi"
	FieldArea     = "Area"
	FieldItem     = "Item_Cek_ID"
)

func isCatalogField(name string) bool {
	switch name {
	case FieldLokasi, FieldLokasiID, FieldArea, FieldItem:
		return true
	}
	return false
}

// CascadeState tags how far the dependent-field chain has resolved.
type CascadeState string

const (
	StateNoLocation       CascadeState = "no_location"
	StateLocationSelected CascadeState = "location_selected"
	StateAreaResolved     CascadeState = "area_resolved"
	StateItemsReady       CascadeState = "items_ready"
)

// Mode selects which submission path is attached.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBulk   Mode = "bulk"
)

type submitFunc func(ctx context.Context) error

// FormSession owns one inspection form's state for one terminal selection:
// the rendered view, the cascade caches, the captured coordinate and the
// single attached submit handler. Sessions are created on terminal selection
// and reset on terminal change or successful submission.
type FormSession struct {
	mu         sync.Mutex
	api        *client.Client
	locator    Locator
	geoTimeout time.Duration

	terminalID int64
	view       *form.View
	state      CascadeState
	mode       Mode

	// Master lokasi list, memoized per terminal session on first successful
	// fetch and dropped on reset.
	lokasiList   []models.Lokasi
	lokasiLoaded bool

	lokasiID *int64
	areaID   *int64
	point    *models.GeoPoint

	// Local great-circle distance from the captured point to the selected
	// lokasi, when its registered coordinate allows one. Advisory; the
	// backend verdict alone gates submission.
	distanceM  *float64
	distanceTo string

	// Monotonic resolution token. Every cascade run captures the current
	// value; a run whose token has been superseded discards its writes.
	resolveSeq uint64

	// The one attached submit handler. Checklist resolution swaps it for the
	// bulk handler; reset reattaches the single-item handler.
	submit submitFunc

	status    string
	statusOK  bool
	geoNote   string
	geoNoteOK bool
	warnings  []string
}

// New creates a session talking to the given backend. locator may be nil when
// the device posts coordinates itself. geoTimeout bounds location capture and
// defaults to ten seconds.
func New(api *client.Client, locator Locator, geoTimeout time.Duration) *FormSession {
	if geoTimeout <= 0 {
		geoTimeout = 10 * time.Second
	}
	s := &FormSession{
		api:        api,
		locator:    locator,
		geoTimeout: geoTimeout,
		view:       form.NewView(),
		state:      StateNoLocation,
		mode:       ModeSingle,
	}
	s.submit = s.submitSingle
	return s
}

// SelectTerminal discards all state from the previous terminal, fetches the
// new terminal's schema and renders the form. A schema that cannot be loaded
// or normalized leaves a notice in the view instead of failing the session.
func (s *FormSession) SelectTerminal(ctx context.Context, terminalID int64) error {
	s.mu.Lock()
	s.resetLocked()
	s.terminalID = terminalID
	token := s.resolveSeq
	s.mu.Unlock()

	if terminalID == 0 {
		return nil
	}

	detail, err := s.api.Terminal(ctx, terminalID)
	if err != nil {
		log.Printf("terminal %d schema fetch failed: %v", terminalID, err)
		s.warn("Gagal memuat skema form")
		s.mu.Lock()
		if !s.stale(token) {
			s.view.Notice = "Gagal memuat skema form."
		}
		s.mu.Unlock()
		return nil
	}

	s.renderSchema(ctx, terminalID, detail.RawSchema(), token)
	return nil
}

func (s *FormSession) renderSchema(ctx context.Context, terminalID int64, raw json.RawMessage, token uint64) {
	fields := form.Normalize(raw)
	if len(fields) == 0 {
		s.mu.Lock()
		if !s.stale(token) {
			s.view.Notice = "Skema form belum tersedia untuk terminal ini."
		}
		s.mu.Unlock()
		return
	}

	var catalogNames []string
	for _, f := range fields {
		if f.Name != "" && isCatalogField(f.Name) {
			catalogNames = append(catalogNames, f.Name)
		}
	}
	options := s.resolveOptions(ctx, terminalID, catalogNames)

	s.mu.Lock()
	if s.stale(token) {
		s.mu.Unlock()
		return
	}
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		if isCatalogField(f.Name) {
			// Catalog fields must hold real ids/names, never free text.
			f.Type = "select"
			if opts := options[f.Name]; len(opts) > 0 {
				f.Options = opts
			} else if f.Options == nil {
				f.Options = []models.FieldOption{}
			}
		}
		s.view.Append(form.Render(f))
	}
	s.ensureStatusControlsLocked()
	hasLokasi := s.view.Get(FieldLokasi) != nil
	s.mu.Unlock()

	if hasLokasi {
		// Run the cascade once for the initially selected lokasi.
		s.resolveLokasiChange(ctx)
	}
}

// resolveOptions fetches backend option lists for catalog fields. It is a
// no-op without a terminal or field names, and a fetch failure degrades to an
// empty map with a warning; it never fails the render.
func (s *FormSession) resolveOptions(ctx context.Context, terminalID int64, names []string) map[string][]models.FieldOption {
	if terminalID == 0 || len(names) == 0 {
		return map[string][]models.FieldOption{}
	}
	options, err := s.api.TerminalOptions(ctx, terminalID, names)
	if err != nil {
		log.Printf("terminal %d options fetch failed: %v", terminalID, err)
		s.warn("Gagal memuat opsi")
		return map[string][]models.FieldOption{}
	}
	return options
}

// ensureStatusControlsLocked attaches the single-item status block below the
// item select. Checklist mode removes it again.
func (s *FormSession) ensureStatusControlsLocked() {
	if s.view.Get(FieldItem) == nil {
		return
	}
	if s.view.StatusGroup != nil || s.view.Checklist != nil {
		return
	}
	s.view.StatusGroup = &form.StatusGroup{Status: models.StatusBagus}
}

// ChangeField records a user edit on the named control and re-resolves the
// cascade when an upstream selection changed.
func (s *FormSession) ChangeField(ctx context.Context, name, value string) error {
	s.mu.Lock()
	c := s.view.Get(name)
	if c == nil {
		s.mu.Unlock()
		return &UnknownFieldError{Name: name}
	}
	if c.ReadOnly {
		s.mu.Unlock()
		return &ReadOnlyFieldError{Name: name}
	}
	if c.Kind == form.KindCheckbox {
		c.Checked = value == "true" || value == "1" || value == "on"
	} else {
		c.Value = value
	}
	s.mu.Unlock()

	switch name {
	case FieldLokasi:
		s.resolveLokasiChange(ctx)
	case FieldArea:
		s.resolveAreaChange(ctx)
	}
	return nil
}

// SetStatus records the single-item Bagus/Rusak choice and damage note.
func (s *FormSession) SetStatus(status, keterangan string) error {
	if status != models.StatusBagus && status != models.StatusRusak {
		return &InvalidStatusError{Status: status}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.StatusGroup == nil {
		return ErrNoStatusGroup
	}
	s.view.StatusGroup.Status = status
	s.view.StatusGroup.Keterangan = keterangan
	return nil
}

// SetShift records the checklist shift selection.
func (s *FormSession) SetShift(shift string) error {
	valid := false
	for _, sh := range models.Shifts {
		if sh == shift {
			valid = true
			break
		}
	}
	if !valid {
		return &InvalidShiftError{Shift: shift}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Checklist == nil {
		return ErrNoChecklist
	}
	s.view.Checklist.Shift = shift
	return nil
}

// SetChecklistRow records the status and damage note of one checklist row.
func (s *FormSession) SetChecklistRow(itemID int64, status, catatan string) error {
	if status != models.StatusBagus && status != models.StatusRusak {
		return &InvalidStatusError{Status: status}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Checklist == nil {
		return ErrNoChecklist
	}
	for _, row := range s.view.Checklist.Rows {
		if row.ItemID == itemID {
			row.Status = status
			row.Catatan = catatan
			return nil
		}
	}
	return &UnknownItemError{ItemID: itemID}
}

// Reset returns the session to its pre-terminal-selection state: view
// cleared, caches dropped, coordinate discarded, single-item handler
// reattached. In-flight cascade resolutions are superseded.
func (s *FormSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *FormSession) resetLocked() {
	s.resolveSeq++
	s.terminalID = 0
	s.view.Clear()
	s.state = StateNoLocation
	s.mode = ModeSingle
	s.lokasiList = nil
	s.lokasiLoaded = false
	s.lokasiID = nil
	s.areaID = nil
	s.point = nil
	s.distanceM = nil
	s.distanceTo = ""
	s.geoNote = ""
	s.geoNoteOK = false
	s.submit = s.submitSingle
}

// ensureLokasiList returns the master lokasi list, fetching it on first use.
// Only a successful fetch is memoized, so a later call can recover from a
// backend hiccup.
func (s *FormSession) ensureLokasiList(ctx context.Context) []models.Lokasi {
	s.mu.Lock()
	if s.lokasiLoaded {
		list := s.lokasiList
		s.mu.Unlock()
		return list
	}
	s.mu.Unlock()

	list, err := s.api.LokasiList(ctx)
	if err != nil {
		log.Printf("lokasi master list fetch failed: %v", err)
		return nil
	}
	s.mu.Lock()
	s.lokasiList = list
	s.lokasiLoaded = true
	s.mu.Unlock()
	return list
}

// ResolveLokasiID maps a display name to its id within the master list.
// The second return is false when the name matches no row.
func ResolveLokasiID(list []models.Lokasi, name string) (int64, bool) {
	for _, l := range list {
		if l.NamaLokasi == name {
			return l.IDLokasi, true
		}
	}
	return 0, false
}

func (s *FormSession) nextTokenLocked() uint64 {
	s.resolveSeq++
	return s.resolveSeq
}

func (s *FormSession) stale(token uint64) bool {
	return token != s.resolveSeq
}

func (s *FormSession) setStatus(msg string, ok bool) {
	s.mu.Lock()
	s.status = msg
	s.statusOK = ok
	s.mu.Unlock()
}

func (s *FormSession) setGeoNote(msg string, ok bool) {
	s.mu.Lock()
	s.geoNote = msg
	s.geoNoteOK = ok
	s.mu.Unlock()
}

func (s *FormSession) warn(msg string) {
	s.mu.Lock()
	s.warnings = append(s.warnings, msg)
	s.mu.Unlock()
	log.Printf("⚠️  %s", msg)
}

// Status returns the last submission status line and whether it reports
// success.
func (s *FormSession) Status() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.statusOK
}

// GeoNote returns the last location-capture note.
func (s *FormSession) GeoNote() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geoNote, s.geoNoteOK
}

// Warnings returns the non-fatal warnings collected so far.
func (s *FormSession) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// State returns the cascade state.
func (s *FormSession) State() CascadeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the attached submission mode.
func (s *FormSession) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// TerminalID returns the selected terminal, zero when none.
func (s *FormSession) TerminalID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminalID
}

// Point returns the captured coordinate, nil when none.
func (s *FormSession) Point() *models.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.point == nil {
		return nil
	}
	p := *s.point
	return &p
}

// Distance returns the locally computed distance in meters from the captured
// point to the selected lokasi's registered coordinate, and that lokasi's
// name. ok is false when no point is captured or the lokasi has no coordinate.
func (s *FormSession) Distance() (meters float64, lokasi string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.distanceM == nil {
		return 0, "", false
	}
	return *s.distanceM, s.distanceTo, true
}

// View exposes the rendered control tree. Callers must not retain it across
// concurrent session use.
func (s *FormSession) View() *form.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Envelope is the serialized session state served by the HTTP facade.
type Envelope struct {
	TerminalID int64            `json:"terminal_id,omitempty"`
	State      CascadeState     `json:"state"`
	Mode       Mode             `json:"mode"`
	Status     string           `json:"status,omitempty"`
	StatusOK   bool             `json:"status_ok,omitempty"`
	GeoNote    string           `json:"geo_note,omitempty"`
	GeoNoteOK  bool             `json:"geo_note_ok,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
	Point      *models.GeoPoint `json:"point,omitempty"`
	DistanceM  *float64         `json:"distance_m,omitempty"`
	DistanceTo string           `json:"distance_to,omitempty"`
	View       *form.View       `json:"view"`
}

// Snapshot serializes the session state for transport.
func (s *FormSession) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := Envelope{
		TerminalID: s.terminalID,
		State:      s.state,
		Mode:       s.mode,
		Status:     s.status,
		StatusOK:   s.statusOK,
		GeoNote:    s.geoNote,
		GeoNoteOK:  s.geoNoteOK,
		Warnings:   s.warnings,
		Point:      s.point,
		DistanceM:  s.distanceM,
		DistanceTo: s.distanceTo,
		View:       s.view,
	}
	return json.Marshal(env)
}

// trimmed is a small helper shared by the submit paths.
func trimmed(s string) string {
	return strings.TrimSpace(s)
}
