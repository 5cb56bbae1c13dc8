package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cebutourist/sugbo/internal/service"
)

// DelicacyHandler exposes the delicacies service over HTTP.
type DelicacyHandler struct {
	svc *service.Delicacies
}

// NewDelicacyHandler creates a DelicacyHandler.
func NewDelicacyHandler(svc *service.Delicacies) *DelicacyHandler {
	return &DelicacyHandler{svc: svc}
}

// List returns a filtered page of delicacies.
// GET /api/v1/delicacies
func (h *DelicacyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listOptions(r))
	writeResult(w, page, err)
}

// Get returns one delicacy.
// GET /api/v1/delicacies/{id}
func (h *DelicacyHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, d, err)
}

// Create inserts a new delicacy.
// POST /api/v1/delicacies
func (h *DelicacyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.DelicacyInput
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
// PATCH /api/v1/delicacies/{id}
func (h *DelicacyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	d, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	writeResult(w, d, err)
}

// Delete permanently removes a delicacy.
// DELETE /api/v1/delicacies/{id}
func (h *DelicacyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, map[string]interface{}{"deleted": err == nil}, err)
}

// ToggleFeatured flips the featured flag.
// POST /api/v1/delicacies/{id}/featured
func (h *DelicacyHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, d, err)
}

// Statistics summarizes the delicacies table.
// GET /api/v1/delicacies/stats
func (h *DelicacyHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	writeResult(w, stats, err)
}

// Export streams all delicacies as JSON or CSV.
// GET /api/v1/delicacies/export?format=csv
func (h *DelicacyHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := exportFormat(r)
	out, err := h.svc.Export(r.Context(), format)
	if err != nil {
		writeResult(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", service.ExportContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="delicacies.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
