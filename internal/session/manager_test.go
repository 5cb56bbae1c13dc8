package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/notify"
)

func newTestGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	gw, err := gateway.Open(gateway.ConnectionConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { gw.Close() })

	if err := gw.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return gw
}

func seedAdmin(t *testing.T, gw *gateway.Gateway, email, password string, active bool) {
	t.Helper()
	err := gw.From("admin_users").Insert(context.Background(), map[string]interface{}{
		"email":         email,
		"password_hash": auth.Digest(password),
		"name":          "Test Admin",
		"role":          "admin",
		"is_active":     active,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func newTestManager(t *testing.T, gw *gateway.Gateway, ttl time.Duration) (*Manager, *MemoryStore, *notify.Bus) {
	t.Helper()
	store := NewMemoryStore()
	bus := notify.NewBus()
	m := NewManager(gw, store, bus, ttl, slog.Default())
	return m, store, bus
}

func TestLoginHappyPath(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "admin@cebutourist.ph", "admin123", true)
	m, store, _ := newTestManager(t, gw, time.Hour)

	if err := m.Login(context.Background(), "admin@cebutourist.ph", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !m.IsLoggedIn() {
		t.Error("IsLoggedIn = false after login")
	}
	admin, ok := m.CurrentAdmin()
	if !ok || admin.Email != "admin@cebutourist.ph" {
		t.Errorf("current admin = %+v", admin)
	}
	if admin.PasswordHash != "" {
		t.Error("session carries a credential digest")
	}
	if admin.LastLoginAt == nil {
		t.Error("last login not stamped")
	}
	if _, err := store.Load(); err != nil {
		t.Errorf("session not persisted: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "admin@cebutourist.ph", "admin123", true)
	m, _, _ := newTestManager(t, gw, time.Hour)

	err := m.Login(context.Background(), "admin@cebutourist.ph", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if m.IsLoggedIn() {
		t.Error("logged in after failed attempt")
	}
}

func TestLoginUnknownAndInactiveLookAlike(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "inactive@cebutourist.ph", "admin123", false)
	m, _, _ := newTestManager(t, gw, time.Hour)

	unknownErr := m.Login(context.Background(), "missing@cebutourist.ph", "admin123")
	inactiveErr := m.Login(context.Background(), "inactive@cebutourist.ph", "admin123")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(inactiveErr, ErrInvalidCredentials) {
		t.Errorf("unknown = %v, inactive = %v; both must be ErrInvalidCredentials", unknownErr, inactiveErr)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "admin@cebutourist.ph", "admin123", true)
	m, store, _ := newTestManager(t, gw, time.Hour)

	if err := m.Login(context.Background(), "admin@cebutourist.ph", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	m.Logout()

	if m.IsLoggedIn() {
		t.Error("still logged in after logout")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("stored session survived logout: %v", err)
	}
}

func TestRestoreAdoptsPersistedSession(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "admin@cebutourist.ph", "admin123", true)

	store := NewMemoryStore()
	bus := notify.NewBus()
	first := NewManager(gw, store, bus, time.Hour, slog.Default())
	if err := first.Login(context.Background(), "admin@cebutourist.ph", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A fresh manager over the same store simulates a restart.
	second := NewManager(gw, store, bus, time.Hour, slog.Default())
	if !second.Restore() {
		t.Fatal("Restore = false for a live session")
	}
	admin, _ := second.CurrentAdmin()
	if admin.Email != "admin@cebutourist.ph" {
		t.Errorf("restored admin = %+v", admin)
	}
}

func TestRestoreRejectsCorruptBlob(t *testing.T) {
	gw := newTestGateway(t)
	store := NewMemoryStore()
	store.Save([]byte("{not json"))

	m := NewManager(gw, store, notify.NewBus(), time.Hour, slog.Default())
	if m.Restore() {
		t.Error("Restore = true for corrupt blob")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Error("corrupt blob not cleared")
	}
}

func TestRestoreRejectsExpiredSession(t *testing.T) {
	gw := newTestGateway(t)
	store := NewMemoryStore()
	// A session issued two hours ago against a 1h TTL.
	stale := []byte(`{"admin":{"id":1,"email":"admin@cebutourist.ph"},"timestamp":` +
		timeMilli(-2*time.Hour) + `}`)
	store.Save(stale)

	m := NewManager(gw, store, notify.NewBus(), time.Hour, slog.Default())
	if m.Restore() {
		t.Error("Restore = true for expired session")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Error("expired blob not cleared")
	}
}

func TestSessionExpiresExactlyOnce(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "admin@cebutourist.ph", "admin123", true)

	store := NewMemoryStore()
	bus := notify.NewBus()
	ch := bus.Subscribe()
	m := NewManager(gw, store, bus, 50*time.Millisecond, slog.Default())

	if err := m.Login(context.Background(), "admin@cebutourist.ph", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	<-ch // welcome notification

	var warnings int
	deadline := time.After(500 * time.Millisecond)
wait:
	for {
		select {
		case n := <-ch:
			if n.Severity == notify.SeverityWarning {
				warnings++
			}
		case <-deadline:
			break wait
		}
	}

	if warnings != 1 {
		t.Errorf("expiry warnings = %d, want exactly 1", warnings)
	}
	if m.IsLoggedIn() {
		t.Error("still logged in after expiry")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Error("expired session not cleared from store")
	}
}

func TestHasRole(t *testing.T) {
	gw := newTestGateway(t)
	seedAdmin(t, gw, "admin@cebutourist.ph", "admin123", true)
	m, _, _ := newTestManager(t, gw, time.Hour)

	if m.HasRole("admin") {
		t.Error("HasRole true while logged out")
	}
	if err := m.Login(context.Background(), "admin@cebutourist.ph", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !m.HasRole("admin") {
		t.Error("HasRole(admin) = false for admin")
	}
	if m.HasRole("super_admin") {
		t.Error("HasRole(super_admin) = true for plain admin")
	}
}

func timeMilli(offset time.Duration) string {
	return strconv.FormatInt(time.Now().Add(offset).UnixMilli(), 10)
}
