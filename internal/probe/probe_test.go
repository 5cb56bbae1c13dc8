package probe

import (
	"context"
	"testing"

	"github.com/cebutourist/sugbo/internal/gateway"
)

func newTestGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	gw, err := gateway.Open(gateway.ConnectionConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { gw.Close() })
	return gw
}

func TestCheckNeedsSetupBeforeMigration(t *testing.T) {
	gw := newTestGateway(t)

	report := Check(context.Background(), gw)
	if report.Status != StatusNeedsSetup {
		t.Fatalf("status = %q, want %q", report.Status, StatusNeedsSetup)
	}
	if len(report.MissingTables) != len(requiredTables) {
		t.Errorf("missing = %v, want all %d tables", report.MissingTables, len(requiredTables))
	}
}

func TestCheckOKAfterMigration(t *testing.T) {
	gw := newTestGateway(t)
	if err := gw.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	report := Check(context.Background(), gw)
	if report.Status != StatusOK {
		t.Errorf("status = %q (missing %v), want %q", report.Status, report.MissingTables, StatusOK)
	}
}

func TestCheckReportsPartialSetup(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()
	if err := gw.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := gw.DB().ExecContext(ctx, "DROP TABLE delicacies"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	report := Check(ctx, gw)
	if report.Status != StatusNeedsSetup {
		t.Fatalf("status = %q, want %q", report.Status, StatusNeedsSetup)
	}
	if len(report.MissingTables) != 1 || report.MissingTables[0] != "delicacies" {
		t.Errorf("missing = %v, want [delicacies]", report.MissingTables)
	}
}
