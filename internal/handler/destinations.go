package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cebutourist/sugbo/internal/service"
)

// DestinationHandler exposes the destinations service over HTTP.
type DestinationHandler struct {
	svc *service.Destinations
}

// NewDestinationHandler creates a DestinationHandler.
func NewDestinationHandler(svc *service.Destinations) *DestinationHandler {
	return &DestinationHandler{svc: svc}
}

// List returns a filtered page of destinations.
// GET /api/v1/destinations
func (h *DestinationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listOptions(r))
	writeResult(w, page, err)
}

// Get returns one destination.
// GET /api/v1/destinations/{id}
func (h *DestinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, d, err)
}

// Create inserts a new destination.
// POST /api/v1/destinations
func (h *DestinationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.DestinationInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	d, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeResult(w, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.Envelope(d, nil))
}

// Update applies a partial patch.
// PATCH /api/v1/destinations/{id}
func (h *DestinationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	d, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	writeResult(w, d, err)
}

// Delete permanently removes a destination.
// DELETE /api/v1/destinations/{id}
func (h *DestinationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, map[string]interface{}{"deleted": err == nil}, err)
}

// ToggleFeatured flips the featured flag.
// POST /api/v1/destinations/{id}/featured
func (h *DestinationHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, d, err)
}

// Statistics summarizes the destinations table.
// GET /api/v1/destinations/stats
func (h *DestinationHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	writeResult(w, stats, err)
}

// Export streams all destinations as JSON or CSV.
// GET /api/v1/destinations/export?format=csv
func (h *DestinationHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := exportFormat(r)
	out, err := h.svc.Export(r.Context(), format)
	if err != nil {
		writeResult(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", service.ExportContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="destinations.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
