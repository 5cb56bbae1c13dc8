package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cebutourist/sugbo/internal/probe"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database"},
		Short:   "Manage the backing database",
		Long:    "Initialize and inspect the SQL backend the admin API runs against.",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBPingCmd())

	return cmd
}

// ---------- db init ----------

func newDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the backend tables",
		Long:  "Create every table the admin API expects. Safe to run repeatedly; existing tables are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := openGateway()
			if err != nil {
				return fmt.Errorf("connect backend: %w", err)
			}
			defer gw.Close()

			if err := gw.Migrate(context.Background()); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			fmt.Println("Backend initialized.")
			fmt.Println("Next: create an admin account with `sugbo admin create`.")
			return nil
		},
	}
}

// ---------- db ping ----------

func newDBPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check backend connectivity and table layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := openGateway()
			if err != nil {
				return fmt.Errorf("connect backend: %w", err)
			}
			defer gw.Close()

			report := probe.Check(context.Background(), gw)
			switch report.Status {
			case probe.StatusOK:
				fmt.Println("Backend is reachable and all tables are present.")
			case probe.StatusNeedsSetup:
				fmt.Println("Backend is reachable but needs setup. Missing tables:")
				for _, t := range report.MissingTables {
					fmt.Printf("  - %s\n", t)
				}
				fmt.Println("Run `sugbo db init` to create them.")
			case probe.StatusUnreachable:
				return fmt.Errorf("backend unreachable: %s", report.Err)
			}
			return nil
		},
	}
}
