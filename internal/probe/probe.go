// Package probe health-checks the backend at startup. It distinguishes a
// reachable database with missing tables from an unreachable one; the
// outcome is informational and never blocks login.
package probe

import (
	"context"

	"github.com/cebutourist/sugbo/internal/gateway"
)

// Status is the overall probe outcome.
type Status string

const (
	// StatusOK means the backend is reachable and every expected table
	// answered a head-only select.
	StatusOK Status = "ok"
	// StatusNeedsSetup means the backend is reachable but at least one
	// expected table is missing or denied.
	StatusNeedsSetup Status = "needs_setup"
	// StatusUnreachable means the backend did not answer at all.
	StatusUnreachable Status = "unreachable"
)

// requiredTables are the tables the admin console expects to exist.
var requiredTables = []string{
	"admin_users",
	"destinations",
	"delicacies",
	"users",
	"admin_audit_log",
	"destination_audit",
}

// Report is the detailed probe result.
type Report struct {
	Status        Status   `json:"status"`
	MissingTables []string `json:"missing_tables,omitempty"`
	Err           string   `json:"error,omitempty"`
}

// Check issues a head-only select against each required table.
func Check(ctx context.Context, gw *gateway.Gateway) Report {
	if err := gw.Ping(ctx); err != nil {
		return Report{Status: StatusUnreachable, Err: err.Error()}
	}

	var missing []string
	for _, table := range requiredTables {
		if err := gw.From(table).Head(ctx); err != nil {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return Report{Status: StatusNeedsSetup, MissingTables: missing}
	}
	return Report{Status: StatusOK}
}
