// Package session maintains the bounded admin session: login against the
// admin_users table, persistence under the fixed admin_session key, idle
// expiry on a single-shot timer, and restoration at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/authz"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/notify"
)

// ErrInvalidCredentials is returned when the email is unknown, the account
// is inactive, or the password digest does not match. The three cases are
// deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Manager owns the singleton client session and its expiry timer. All
// methods are safe for concurrent use.
type Manager struct {
	gw     *gateway.Gateway
	store  Store
	bus    *notify.Bus
	ttl    time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	current *model.Session
	timer   *time.Timer
}

// NewManager creates a session manager. ttl is the maximum session age
// before forced re-login.
func NewManager(gw *gateway.Gateway, store Store, bus *notify.Bus, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{gw: gw, store: store, bus: bus, ttl: ttl, logger: logger}
}

// Login authenticates the operator against the admin_users table. On
// success the credential is stripped, the session is persisted, and the
// expiry timer is armed for the full TTL.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	var admin model.Admin
	err := m.gw.From("admin_users").
		Eq("email", email).
		Eq("is_active", true).
		One(ctx, &admin)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !auth.Verify(password, admin.PasswordHash) {
		return ErrInvalidCredentials
	}

	// Best-effort: a failed last_login stamp must not abort the login.
	now := time.Now().UTC()
	if _, err := m.gw.From("admin_users").Eq("id", admin.ID).
		Update(ctx, map[string]interface{}{"last_login_at": now}); err != nil {
		m.logger.Warn("failed to update last login", "admin_id", admin.ID, "error", err)
	}
	admin.LastLoginAt = &now

	sess := model.Session{Admin: admin.Sanitized(), IssuedAt: time.Now().UnixMilli()}
	if err := m.persist(sess); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = &sess
	m.armTimerLocked(m.ttl)
	m.mu.Unlock()

	m.bus.Success("Welcome back, " + admin.Name)
	return nil
}

// Logout clears the stored session and the expiry timer.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.stopTimerLocked()
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear stored session", "error", err)
	}
	m.bus.Info("You have been logged out")
}

// Restore adopts a previously persisted session at startup. It returns
// false, clearing the blob, when nothing is stored, the payload is
// corrupted, or the session has outlived the TTL. On success the timer is
// re-armed with the remaining time only.
func (m *Manager) Restore() bool {
	data, err := m.store.Load()
	if err != nil {
		return false
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Admin.ID == 0 {
		// Corrupted payload is treated as absent.
		_ = m.store.Clear()
		return false
	}

	now := time.Now()
	if sess.Expired(now, m.ttl) {
		_ = m.store.Clear()
		return false
	}

	m.mu.Lock()
	m.current = &sess
	m.armTimerLocked(m.ttl - sess.Age(now))
	m.mu.Unlock()
	return true
}

// CurrentAdmin returns the logged-in admin, if any. The returned record
// never carries a credential digest.
func (m *Manager) CurrentAdmin() (model.Admin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return model.Admin{}, false
	}
	return m.current.Admin, true
}

// IsLoggedIn reports whether a live session exists. The stored issue time
// is compared against the wall clock, so a session counts as expired even
// if the timer has not fired yet.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false
	}
	return !m.current.Expired(time.Now(), m.ttl)
}

// HasRole reports whether the logged-in admin satisfies the role.
func (m *Manager) HasRole(role string) bool {
	admin, ok := m.CurrentAdmin()
	return ok && admin.HasRole(role)
}

// Context returns ctx with the logged-in admin attached as the acting
// admin, ready for the service layer's authorization gate.
func (m *Manager) Context(ctx context.Context) context.Context {
	admin, ok := m.CurrentAdmin()
	if !ok {
		return ctx
	}
	return authz.WithAdmin(ctx, admin)
}

func (m *Manager) persist(sess model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return m.store.Save(data)
}

// armTimerLocked arms the single-shot expiry timer. Callers hold m.mu.
func (m *Manager) armTimerLocked(d time.Duration) {
	m.stopTimerLocked()
	if d <= 0 {
		d = time.Nanosecond
	}
	m.timer = time.AfterFunc(d, m.expire)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// expire fires once per armed timer: it drops the session and surfaces a
// single warning so the console can force re-login.
func (m *Manager) expire() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.current = nil
	m.timer = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear expired session", "error", err)
	}
	m.bus.Warning("Your session has expired. Please log in again.")
}
