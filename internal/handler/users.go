package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cebutourist/sugbo/internal/service"
)

// UserHandler exposes the end-user profiles service over HTTP.
type UserHandler struct {
	svc *service.Users
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.Users) *UserHandler {
	return &UserHandler{svc: svc}
}

// List returns a filtered page of user profiles.
// GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listOptions(r))
	writeResult(w, page, err)
}

// Get returns one user profile.
// GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, u, err)
}

// Create inserts a new user profile.
// POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	u, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeResult(w, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.Envelope(u, nil))
}

// Update applies a partial patch.
// PATCH /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	u, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	writeResult(w, u, err)
}

// Delete soft-deletes a user profile.
// DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, map[string]interface{}{"deactivated": err == nil}, err)
}

// Restore reactivates a soft-deleted user profile.
// POST /api/v1/users/{id}/restore
func (h *UserHandler) Restore(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Restore(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, u, err)
}

// Statistics summarizes the users table.
// GET /api/v1/users/stats
func (h *UserHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	writeResult(w, stats, err)
}
