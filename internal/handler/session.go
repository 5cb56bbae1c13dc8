package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/authz"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
)

// SessionHandler authenticates operators and issues bearer tokens bounded
// by the configured session timeout.
type SessionHandler struct {
	gw     *gateway.Gateway
	tokens *auth.TokenService
	aud    audit.Recorder
	reg    *config.Registry
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(gw *gateway.Gateway, tokens *auth.TokenService, aud audit.Recorder, reg *config.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{gw: gw, tokens: tokens, aud: aud, reg: reg, logger: logger}
}

// loginRequest is the expected payload for the Login endpoint.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response payload for a successful login. The admin
// record never carries a credential digest.
type loginResponse struct {
	Token     string      `json:"session_token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
	Admin     model.Admin `json:"admin"`
}

// Login authenticates an admin and returns a bearer token.
// POST /api/v1/admin/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var admin model.Admin
	err := h.gw.From("admin_users").
		Eq("email", req.Email).
		Eq("is_active", true).
		One(r.Context(), &admin)
	if err != nil {
		// Unknown email and inactive account are indistinguishable from a
		// wrong password.
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !auth.Verify(req.Password, admin.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	ttl := h.reg.Auth.SessionTimeout
	token, err := h.tokens.Issue(admin.ID, admin.Email, admin.Role, ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	// Best-effort: a failed last_login stamp must not abort the login.
	now := time.Now().UTC()
	if _, err := h.gw.From("admin_users").Eq("id", admin.ID).
		Update(r.Context(), map[string]interface{}{"last_login_at": now}); err != nil {
		h.logger.Warn("failed to update last login", "admin_id", admin.ID, "error", err)
	}
	admin.LastLoginAt = &now

	h.aud.Record(r.Context(), audit.Entry{
		AdminID:    admin.ID,
		AdminEmail: admin.Email,
		Action:     "login",
		Table:      "admin_users",
		UserAgent:  r.UserAgent(),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(ttl.Seconds()),
		Admin:     admin.Sanitized(),
	})
}

// Logout ends the session. Tokens are stateless, so the server side only
// records the action; clients discard their token.
// DELETE /api/v1/admin/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if admin, ok := authz.AdminFrom(r.Context()); ok {
		h.aud.Record(r.Context(), audit.Entry{
			AdminID:    admin.ID,
			AdminEmail: admin.Email,
			Action:     "logout",
			Table:      "admin_users",
			UserAgent:  r.UserAgent(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Session ended. Discard your token.",
	})
}
