package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"p9e.in/bib/handlers"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(sessions *handlers.SessionHandler, catalog *handlers.CatalogHandler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// =====================================================
	// Catalog proxies (no session required)
	// =====================================================
	api.HandleFunc("/terminals", catalog.ListTerminals).Methods("GET")
	api.HandleFunc("/terminals/{id:[0-9]+}", catalog.GetTerminal).Methods("GET")
	api.HandleFunc("/lokasi", catalog.ListLokasi).Methods("GET")

	// =====================================================
	// Form sessions
	// =====================================================
	s := api.PathPrefix("/sessions").Subrouter()
	s.HandleFunc("", sessions.CreateSession).Methods("POST")
	s.HandleFunc("/{id}", sessions.GetSession).Methods("GET")
	s.HandleFunc("/{id}", sessions.DeleteSession).Methods("DELETE")
	s.HandleFunc("/{id}/terminal", sessions.SelectTerminal).Methods("POST")
	s.HandleFunc("/{id}/fields/{name}", sessions.ChangeField).Methods("POST")
	s.HandleFunc("/{id}/status", sessions.SetStatus).Methods("POST")
	s.HandleFunc("/{id}/shift", sessions.SetShift).Methods("POST")
	s.HandleFunc("/{id}/checklist/{itemID:[0-9]+}", sessions.SetChecklistRow).Methods("POST")
	s.HandleFunc("/{id}/location", sessions.SetLocation).Methods("POST")
	s.HandleFunc("/{id}/reset", sessions.ResetSession).Methods("POST")
	s.HandleFunc("/{id}/submit", sessions.Submit).Methods("POST")

	// =====================================================
	// Admin
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/import-xlsx", handlers.ImportPreview).Methods("POST")

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
