package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/notify"
	"github.com/cebutourist/sugbo/internal/service"
)

const (
	testAdminEmail = "ops@cebutourist.ph"
	testSuperEmail = "root@cebutourist.ph"
	testPassword   = "correct horse battery"
)

// newTestServer builds a fully-wired server over an in-memory backend with
// one regular admin and one super-admin seeded.
func newTestServer(t *testing.T) (*Server, *gateway.Gateway) {
	t.Helper()
	gw, err := gateway.Open(gateway.ConnectionConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { gw.Close() })
	if err := gw.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for email, role := range map[string]string{
		testAdminEmail: model.RoleAdmin,
		testSuperEmail: model.RoleSuperAdmin,
	} {
		err := gw.From("admin_users").Insert(context.Background(), map[string]interface{}{
			"email":         email,
			"password_hash": auth.Digest(testPassword),
			"name":          "Test " + role,
			"role":          role,
			"is_active":     true,
			"created_at":    time.Now().UTC(),
			"updated_at":    time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed %s: %v", email, err)
		}
	}

	reg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := notify.NewBus()
	aud := audit.NewLogger(gw, logger)
	tokens := auth.NewTokenService("test-secret")

	svcs := Services{
		Destinations: service.NewDestinations(gw, aud, bus, reg, logger),
		Delicacies:   service.NewDelicacies(gw, aud, bus, reg, logger),
		Users:        service.NewUsers(gw, aud, bus, reg, logger),
		Admins:       service.NewAdmins(gw, aud, bus, reg, logger),
	}

	srv := New(DefaultConfig(), gw, reg, tokens, aud, svcs, logger)
	return srv, gw
}

// doJSON fires a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/admin/session", "",
		map[string]string{"email": email, "password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"session_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return resp.Token
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) model.Result {
	t.Helper()
	var res model.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return res
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz = %d body %s", rec.Code, rec.Body.String())
	}
}

func TestReadyzReportsMissingTables(t *testing.T) {
	srv, gw := newTestServer(t)
	if _, err := gw.DB().Exec("DROP TABLE delicacies"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	rec := doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "delicacies") {
		t.Errorf("report does not name the missing table: %s", rec.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	for name, body := range map[string]map[string]string{
		"wrong password": {"email": testAdminEmail, "password": "wrong"},
		"unknown email":  {"email": "ghost@cebutourist.ph", "password": testPassword},
	} {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/admin/session", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
		// The two failures are indistinguishable.
		if !strings.Contains(rec.Body.String(), "Invalid credentials") {
			t.Errorf("%s: body = %s", name, rec.Body.String())
		}
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/admin/session", "",
		map[string]string{"email": testAdminEmail})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: status = %d, want 400", rec.Code)
	}
}

func TestLoginNeverLeaksDigest(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/admin/session", "",
		map[string]string{"email": testAdminEmail, "password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("login response carries the credential digest")
	}
	var resp struct {
		TokenType string `json:"token_type"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "bearer" || resp.ExpiresIn != 3600 {
		t.Errorf("token_type = %q, expires_in = %d", resp.TokenType, resp.ExpiresIn)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{
		"/api/v1/destinations",
		"/api/v1/delicacies",
		"/api/v1/users",
		"/api/v1/admins",
	} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/destinations", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token = %d, want 401", rec.Code)
	}
}

func TestDeactivatedAdminLosesAccess(t *testing.T) {
	srv, gw := newTestServer(t)
	token := login(t, srv, testAdminEmail)

	// Token works while the account is active.
	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/destinations", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("active admin denied: %d", rec.Code)
	}

	if _, err := gw.From("admin_users").Eq("email", testAdminEmail).
		Update(context.Background(), map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The still-valid JWT is rejected on the next request.
	if rec := doJSON(t, srv, http.MethodGet, "/api/v1/destinations", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("deactivated admin kept access: %d", rec.Code)
	}
}

func TestDestinationCRUDOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, testAdminEmail)

	// Create.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/destinations", token, map[string]interface{}{
		"name":        "Osmeña Peak",
		"description": "Highest point in Cebu",
		"location":    "Dalaguete",
		"category":    "Mountains",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if !res.OK {
		t.Fatalf("create envelope = %+v", res)
	}
	created, _ := res.Data.(map[string]interface{})
	id, _ := created["id"].(string)
	if !strings.HasPrefix(id, "dest_") {
		t.Fatalf("created id = %q", id)
	}

	// Get.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/destinations/"+id, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get = %d", rec.Code)
	}

	// Patch.
	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/destinations/"+id, token,
		map[string]interface{}{"entrance_fee": 30})
	if rec.Code != http.StatusOK {
		t.Errorf("patch = %d body %s", rec.Code, rec.Body.String())
	}

	// Toggle featured.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/destinations/"+id+"/featured", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("toggle = %d", rec.Code)
	}
	res = decodeResult(t, rec)
	toggled, _ := res.Data.(map[string]interface{})
	if featured, _ := toggled["featured"].(bool); !featured {
		t.Error("toggle did not set featured")
	}

	// Stats.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/destinations/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("stats = %d", rec.Code)
	}

	// Delete, then 404.
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/destinations/"+id, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/destinations/"+id, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestValidationFailureIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, testAdminEmail)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/destinations", token, map[string]interface{}{
		"name":        "Nowhere",
		"description": "d",
		"location":    "Cebu",
		"category":    "Casinos",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category = %d, want 400", rec.Code)
	}
	res := decodeResult(t, rec)
	if res.OK || res.Error == "" {
		t.Errorf("envelope = %+v", res)
	}
}

func TestExportHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, testAdminEmail)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/destinations/export?format=csv", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="destinations.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/delicacies/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("json export = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestUserRestoreRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, testAdminEmail)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/users", token,
		map[string]string{"name": "Maria", "email": "maria@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user = %d body %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	created, _ := res.Data.(map[string]interface{})
	id, _ := created["id"].(string)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/users/"+id, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("soft delete = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/users/"+id+"/restore", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore = %d body %s", rec.Code, rec.Body.String())
	}
	res = decodeResult(t, rec)
	restored, _ := res.Data.(map[string]interface{})
	if active, _ := restored["is_active"].(bool); !active {
		t.Error("restored user not active")
	}
}

func TestAdminRoutesAreSuperAdminOnly(t *testing.T) {
	srv, _ := newTestServer(t)
	adminToken := login(t, srv, testAdminEmail)
	superToken := login(t, srv, testSuperEmail)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/admins", adminToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("plain admin = %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/admins", superToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("super admin = %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/admins", superToken, map[string]string{
		"email":    "junior@cebutourist.ph",
		"password": "longenough",
		"name":     "Junior",
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("create admin = %d body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("create admin response carries the credential digest")
	}
}

func TestLogoutIsAuditable(t *testing.T) {
	srv, gw := newTestServer(t)
	_ = login(t, srv, testAdminEmail)

	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/admin/session", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("logout = %d", rec.Code)
	}

	n, err := gw.From("admin_audit_log").Eq("action", "login").Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("login audit rows = %d, want 1", n)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response carries no request id")
	}
}

func TestLoginThrottleKicksIn(t *testing.T) {
	srv, _ := newTestServer(t)

	var got429 bool
	for i := 0; i < 10; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/admin/session", "",
			map[string]string{"email": testAdminEmail, "password": fmt.Sprintf("wrong-%d", i)})
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("ten rapid login attempts never hit the throttle")
	}
}
