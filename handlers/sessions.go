package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"p9e.in/bib/models"
	"p9e.in/bib/session"
)

// SessionHandler exposes the form-session engine over HTTP. Every mutating
// endpoint responds with the full session snapshot so the page can re-render
// from it.
type SessionHandler struct {
	registry *Registry
}

// NewSessionHandler wires the handler to a session registry.
func NewSessionHandler(reg *Registry) *SessionHandler {
	return &SessionHandler{registry: reg}
}

// CreateSession starts a new form session.
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, s := h.registry.Create()
	log.Printf("🆕 session %s created", id)
	writeSessionCreated(w, id, s)
}

// GetSession returns the current session state.
// GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeSnapshot(w, s)
}

// DeleteSession discards a session.
// DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.registry.Get(id); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	h.registry.Delete(id)
	log.Printf("🗑 session %s deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// SelectTerminal switches the session to a terminal and renders its form.
// POST /api/sessions/{id}/terminal
func (h *SessionHandler) SelectTerminal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		TerminalID int64 `json:"terminal_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.SelectTerminal(r.Context(), body.TerminalID); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeSnapshot(w, s)
}

// ChangeField records a field edit and re-runs the cascade when needed.
// POST /api/sessions/{id}/fields/{name}
func (h *SessionHandler) ChangeField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.ChangeField(r.Context(), name, body.Value); err != nil {
		status := http.StatusBadRequest
		var unknown *session.UnknownFieldError
		if errors.As(err, &unknown) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeSnapshot(w, s)
}

// SetStatus records the single-item Bagus/Rusak choice and damage note.
// POST /api/sessions/{id}/status
func (h *SessionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Status     string `json:"status"`
		Keterangan string `json:"keterangan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.SetStatus(body.Status, body.Keterangan); err != nil {
		http.Error(w, err.Error(), statusForStateError(err))
		return
	}
	writeSnapshot(w, s)
}

// SetShift records the checklist shift.
// POST /api/sessions/{id}/shift
func (h *SessionHandler) SetShift(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Shift string `json:"shift"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.SetShift(body.Shift); err != nil {
		http.Error(w, err.Error(), statusForStateError(err))
		return
	}
	writeSnapshot(w, s)
}

// SetChecklistRow records one checklist row's status and note.
// POST /api/sessions/{id}/checklist/{itemID}
func (h *SessionHandler) SetChecklistRow(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(mux.Vars(r)["itemID"], 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var body struct {
		Status  string `json:"status"`
		Catatan string `json:"catatan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.SetChecklistRow(itemID, body.Status, body.Catatan); err != nil {
		status := statusForStateError(err)
		var unknown *session.UnknownItemError
		if errors.As(err, &unknown) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeSnapshot(w, s)
}

// SetLocation stores device-posted coordinates, or triggers locator capture
// when the body carries none.
// POST /api/sessions/{id}/location
func (h *SessionHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	// an empty body means "capture via the locator"
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Lat != nil && body.Lon != nil {
		s.SetLocation(r.Context(), models.GeoPoint{Lat: *body.Lat, Lon: *body.Lon})
	} else {
		s.CaptureLocation(r.Context())
	}
	writeSnapshot(w, s)
}

// ResetSession returns the session to its pre-terminal state.
// POST /api/sessions/{id}/reset
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Reset()
	writeSnapshot(w, s)
}

// Submit runs the attached submit handler. Validation failures and geofence
// rejections come back as 200 with the status line set; only transport
// failures map to 502.
// POST /api/sessions/{id}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Submit(r.Context()); err != nil {
		if errors.Is(err, session.ErrNoSubmitHandler) || errors.Is(err, session.ErrNoChecklist) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("❌ session submit failed: %v", err)
		writeSnapshotStatus(w, s, http.StatusBadGateway)
		return
	}
	writeSnapshot(w, s)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.FormSession, bool) {
	id := mux.Vars(r)["id"]
	s, ok := h.registry.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func statusForStateError(err error) int {
	if errors.Is(err, session.ErrNoStatusGroup) || errors.Is(err, session.ErrNoChecklist) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func writeSnapshot(w http.ResponseWriter, s *session.FormSession) {
	writeSnapshotStatus(w, s, http.StatusOK)
}

func writeSnapshotStatus(w http.ResponseWriter, s *session.FormSession, status int) {
	buf, err := s.Snapshot()
	if err != nil {
		http.Error(w, "failed to serialize session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf)
}

func writeSessionCreated(w http.ResponseWriter, id string, s *session.FormSession) {
	buf, err := s.Snapshot()
	if err != nil {
		http.Error(w, "failed to serialize session", http.StatusInternalServerError)
		return
	}
	var env map[string]any
	if err := json.Unmarshal(buf, &env); err != nil {
		http.Error(w, "failed to serialize session", http.StatusInternalServerError)
		return
	}
	env["session_id"] = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(env)
}
