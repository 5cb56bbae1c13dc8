package model

import "time"

// Admin roles. RoleAdmin is the baseline operator role; RoleSuperAdmin may
// additionally manage other admin accounts.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Admin represents an administrative user of the tourism console. Passwords
// are stored as salted SHA-256 digests in the admin_users table.
type Admin struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // salted digest, never expose
	Name         string     `json:"name" db:"name"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty" db:"deactivated_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Sanitized returns a copy of the admin with the credential digest removed.
// Every admin record entering a session, a result envelope, or an audit
// entry goes through this first.
func (a Admin) Sanitized() Admin {
	a.PasswordHash = ""
	return a
}

// HasRole reports whether the admin satisfies the requested role. The
// baseline "admin" role is satisfied by both admins and super-admins; any
// other role requires an exact match.
func (a Admin) HasRole(role string) bool {
	if role == RoleAdmin {
		return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
	}
	return a.Role == role
}
