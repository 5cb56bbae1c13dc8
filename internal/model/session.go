package model

import "time"

// Session is the transient client session: a credential-stripped admin
// snapshot plus the moment it was issued. It is persisted as JSON under the
// fixed "admin_session" key and is valid while now - IssuedAt < the
// configured session TTL.
type Session struct {
	Admin    Admin `json:"admin"`
	IssuedAt int64 `json:"timestamp"` // epoch milliseconds
}

// Age returns how old the session is at the given instant. The comparison
// is against the absolute stored issue time, so a clock moving backward
// never extends a session.
func (s Session) Age(now time.Time) time.Duration {
	issued := time.UnixMilli(s.IssuedAt)
	return now.Sub(issued)
}

// Expired reports whether the session has outlived ttl at the given instant.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return s.Age(now) >= ttl
}
