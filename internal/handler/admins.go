package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cebutourist/sugbo/internal/service"
)

// AdminHandler exposes admin account management over HTTP. Every operation
// is additionally gated on the super-admin role inside the service.
type AdminHandler struct {
	svc *service.Admins
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc *service.Admins) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// List returns a page of admin accounts.
// GET /api/v1/admins
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listOptions(r))
	writeResult(w, page, err)
}

// Get returns one admin account.
// GET /api/v1/admins/{id}
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := adminID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid admin id")
		return
	}
	a, err := h.svc.Get(r.Context(), id)
	writeResult(w, a, err)
}

// Create adds a new admin account.
// POST /api/v1/admins
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.AdminInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	a, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeResult(w, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.Envelope(a, nil))
}

// Update applies a partial patch to an admin account.
// PATCH /api/v1/admins/{id}
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := adminID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid admin id")
		return
	}
	var patch map[string]interface{}
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	a, err := h.svc.Update(r.Context(), id, patch)
	writeResult(w, a, err)
}

// Delete deactivates an admin account.
// DELETE /api/v1/admins/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := adminID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid admin id")
		return
	}
	err = h.svc.Delete(r.Context(), id)
	writeResult(w, map[string]interface{}{"deactivated": err == nil}, err)
}

func adminID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
