package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"p9e.in/bib/client"
)

// CatalogHandler proxies the backend catalog endpoints the page needs before
// any session exists: the terminal list for the picker and a terminal's
// detail for inspection.
type CatalogHandler struct {
	api *client.Client
}

// NewCatalogHandler wires the handler to the backend client.
func NewCatalogHandler(api *client.Client) *CatalogHandler {
	return &CatalogHandler{api: api}
}

// ListTerminals returns the terminal list.
// GET /api/terminals
func (h *CatalogHandler) ListTerminals(w http.ResponseWriter, r *http.Request) {
	terminals, err := h.api.Terminals(r.Context())
	if err != nil {
		log.Printf("❌ terminal list fetch failed: %v", err)
		http.Error(w, "failed to fetch terminals", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(terminals)
}

// GetTerminal returns one terminal's detail including its raw form schema.
// GET /api/terminals/{id}
func (h *CatalogHandler) GetTerminal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid terminal id", http.StatusBadRequest)
		return
	}
	detail, err := h.api.Terminal(r.Context(), id)
	if err != nil {
		log.Printf("❌ terminal %d fetch failed: %v", id, err)
		http.Error(w, "failed to fetch terminal", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// ListLokasi returns the lokasi master list.
// GET /api/lokasi
func (h *CatalogHandler) ListLokasi(w http.ResponseWriter, r *http.Request) {
	list, err := h.api.LokasiList(r.Context())
	if err != nil {
		log.Printf("❌ lokasi list fetch failed: %v", err)
		http.Error(w, "failed to fetch lokasi", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
