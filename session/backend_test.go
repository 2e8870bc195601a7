package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"p9e.in/bib/client"
	"p9e.in/bib/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBackend is a configurable stand-in for the collaborator backend. Every
// route counts its hits so tests can assert which endpoints a flow touched.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	schema      any
	options     map[string]any
	optionsDown bool
	lokasi      []gin.H
	areas       map[int64][]gin.H
	areaItems   map[int64][]gin.H
	lokasiItems map[int64][]gin.H

	verifyValid bool
	verifyDown  bool
	rejectBulk  string

	// rejectBulkRaw answers the bulk endpoint with a bodyless rejection.
	rejectBulkRaw bool

	// gateAreaItems, when set, holds every area-items response until the
	// channel is closed, so a test can supersede an in-flight resolution.
	gateAreaItems chan struct{}

	acceptSingle bool
	lastSingle   models.InspectionPayload
	lastBulk     models.BulkInspectionPayload
}

// newFakeBackend seeds the catalog the cascade tests walk: lokasi 5 "Gate A"
// with two areas, area 9 holding two items, and lokasi 6 "Gate B" without
// coordinates.
func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: make(map[string]int),
		options: map[string]any{
			"Lokasi": []gin.H{
				{"value": "Gate A", "label": "Gate A"},
				{"value": "Gate B", "label": "Gate B"},
			},
		},
		lokasi: []gin.H{
			{"id_lokasi": 5, "nama_lokasi": "Gate A", "latitude": -6.2, "longitude": 106.8, "radius_m": 200},
			{"id_lokasi": 6, "nama_lokasi": "Gate B"},
		},
		areas: map[int64][]gin.H{
			5: {
				{"id_area": 9, "nama_area": "Dermaga"},
				{"id_area": 10, "nama_area": "Gudang"},
			},
		},
		areaItems: map[int64][]gin.H{
			9: {
				{"id_item": 11, "nama_item": "Pompa"},
				{"id_item": 12, "nama_item": "Genset"},
			},
			10: {
				{"id_item": 13, "nama_item": "Lampu"},
			},
		},
		lokasiItems: map[int64][]gin.H{
			5: {
				{"id_item": 21, "nama_item": "Pagar"},
				{"id_item": 22, "nama_item": "CCTV"},
			},
		},
		verifyValid: true,
	}
}

func (b *fakeBackend) hit(name string) {
	b.mu.Lock()
	b.calls[name]++
	b.mu.Unlock()
}

func (b *fakeBackend) hits(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func pathID(ctx *gin.Context) int64 {
	id, _ := strconv.ParseInt(ctx.Param("id"), 10, 64)
	return id
}

func (b *fakeBackend) start(t *testing.T) *client.Client {
	t.Helper()
	r := gin.New()

	r.GET("/api/terminals/:id", func(ctx *gin.Context) {
		b.hit("terminal")
		ctx.JSON(http.StatusOK, gin.H{"id": pathID(ctx), "name": "Terminal Uji", "form_schema": b.schema})
	})
	r.GET("/api/terminals/:id/options", func(ctx *gin.Context) {
		b.hit("options")
		if b.optionsDown {
			ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "options unavailable"})
			return
		}
		ctx.JSON(http.StatusOK, b.options)
	})
	r.GET("/api/lokasi", func(ctx *gin.Context) {
		b.hit("lokasi")
		ctx.JSON(http.StatusOK, b.lokasi)
	})
	r.GET("/api/lokasi/:id/areas", func(ctx *gin.Context) {
		b.hit("areas")
		ctx.JSON(http.StatusOK, orEmpty(b.areas[pathID(ctx)]))
	})
	r.GET("/api/lokasi/:id/items", func(ctx *gin.Context) {
		b.hit("lokasi-items")
		ctx.JSON(http.StatusOK, orEmpty(b.lokasiItems[pathID(ctx)]))
	})
	r.GET("/api/area/:id/items", func(ctx *gin.Context) {
		b.hit("area-items-" + ctx.Param("id"))
		b.mu.Lock()
		gate := b.gateAreaItems
		b.mu.Unlock()
		if gate != nil {
			<-gate
		}
		ctx.JSON(http.StatusOK, orEmpty(b.areaItems[pathID(ctx)]))
	})
	r.POST("/api/verify-location", func(ctx *gin.Context) {
		b.hit("verify")
		if b.verifyDown {
			ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "verifier down"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"valid": b.verifyValid})
	})
	r.POST("/api/inspections/bulk-normalized", func(ctx *gin.Context) {
		b.hit("bulk")
		if b.rejectBulkRaw {
			ctx.Status(http.StatusNotFound)
			return
		}
		if b.rejectBulk != "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": b.rejectBulk})
			return
		}
		var payload models.BulkInspectionPayload
		if err := ctx.ShouldBindJSON(&payload); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		b.mu.Lock()
		b.lastBulk = payload
		b.mu.Unlock()
		ctx.JSON(http.StatusOK, gin.H{"created": len(payload.Items)})
	})
	if b.acceptSingle {
		r.POST("/api/inspections", func(ctx *gin.Context) {
			b.hit("single")
			var payload models.InspectionPayload
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			b.mu.Lock()
			b.lastSingle = payload
			b.mu.Unlock()
			ctx.JSON(http.StatusCreated, gin.H{"id": 7, "created_at": "2025-05-16T15:32:25.181226"})
		})
	}

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, 5*time.Second)
}

func orEmpty(rows []gin.H) []gin.H {
	if rows == nil {
		return []gin.H{}
	}
	return rows
}

// fullSchema declares every catalog field; the Lokasi type is deliberately
// "text" to prove the forced-select override.
func fullSchema() any {
	return []gin.H{
		{"name": "Lokasi", "label": "Lokasi", "type": "text"},
		{"name": "ID_Lokasi", "label": "ID Lokasi", "type": "text"},
		{"name": "Area", "label": "Area", "type": "select"},
		{"name": "Item_Cek_ID", "label": "Item", "type": "select"},
		{"name": "Catatan", "label": "Catatan", "type": "textarea"},
	}
}

// flatSchema has no Area field, so the cascade fills the item select straight
// from the lokasi and the form stays in single mode.
func flatSchema() any {
	return gin.H{
		"Lokasi":      "text",
		"ID_Lokasi":   "text",
		"Item_Cek_ID": "select",
		"Keterangan":  "textarea",
	}
}
