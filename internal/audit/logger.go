// Package audit records every admin-initiated mutation. The preferred sink
// is the admin_audit_log table; when it rejects an insert, a per-entity
// fallback table with a projected shape is tried; when everything fails the
// entry is logged locally. An audit failure never aborts the business
// operation that produced it.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
)

// Entry is one admin action about to be recorded.
type Entry struct {
	AdminID    int64
	AdminEmail string
	Action     string
	Table      string
	RecordID   string
	OldData    model.JSONObject
	NewData    model.JSONObject
	UserAgent  string
}

// Recorder is the interface the entity services depend on, so tests can
// substitute a capturing fake.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// fallbackTables maps an entity table to the projected audit table tried
// when admin_audit_log rejects the insert.
var fallbackTables = map[string]string{
	"destinations": "destination_audit",
}

// Logger writes audit entries through the gateway.
type Logger struct {
	gw     *gateway.Gateway
	logger *slog.Logger
}

// NewLogger creates an audit Logger.
func NewLogger(gw *gateway.Gateway, logger *slog.Logger) *Logger {
	return &Logger{gw: gw, logger: logger}
}

// Record persists the entry, falling back as needed. It never returns an
// error; terminal failures are logged locally with the full entry so the
// action is not lost silently.
func (l *Logger) Record(ctx context.Context, e Entry) {
	now := time.Now().UTC()

	err := l.gw.From("admin_audit_log").Insert(ctx, map[string]interface{}{
		"admin_id":    e.AdminID,
		"admin_email": e.AdminEmail,
		"action":      e.Action,
		"table_name":  e.Table,
		"record_id":   e.RecordID,
		"old_data":    e.OldData,
		"new_data":    e.NewData,
		"user_agent":  e.UserAgent,
		"created_at":  now,
	})
	if err == nil {
		return
	}
	l.logger.Warn("audit log insert failed, trying fallback",
		"action", e.Action, "table", e.Table, "error", err)

	if fallback, ok := fallbackTables[e.Table]; ok {
		ferr := l.gw.From(fallback).Insert(ctx, map[string]interface{}{
			"destination_id": e.RecordID,
			"action":         e.Action,
			"admin_id":       e.AdminID,
			"admin_email":    e.AdminEmail,
			"old_data":       e.OldData,
			"new_data":       e.NewData,
			"created_at":     now,
		})
		if ferr == nil {
			return
		}
		l.logger.Warn("fallback audit insert failed",
			"action", e.Action, "fallback_table", fallback, "error", ferr)
	}

	l.logger.Error("audit entry could not be persisted",
		"action", e.Action,
		"table", e.Table,
		"record_id", e.RecordID,
		"admin_email", e.AdminEmail,
	)
}
