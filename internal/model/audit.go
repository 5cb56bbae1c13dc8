package model

import "time"

// AuditEntry is an append-only record of an admin action. Entries are
// written to admin_audit_log, or to a per-entity fallback table when the
// preferred table rejects the insert. Entries are never mutated.
type AuditEntry struct {
	ID         int64      `json:"id" db:"id"`
	AdminID    int64      `json:"admin_id" db:"admin_id"`
	AdminEmail string     `json:"admin_email" db:"admin_email"`
	Action     string     `json:"action" db:"action"`
	TableName  string     `json:"table_name,omitempty" db:"table_name"`
	RecordID   string     `json:"record_id,omitempty" db:"record_id"`
	OldData    JSONObject `json:"old_data,omitempty" db:"old_data"`
	NewData    JSONObject `json:"new_data,omitempty" db:"new_data"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
