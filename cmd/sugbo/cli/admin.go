package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
		Long:  "Create and list the administrator accounts that can log in to the admin API.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		password string
		name     string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin account",
		Example: `  sugbo admin create --email admin@cebutourist.ph --name "Site Admin"
  sugbo admin create --email root@cebutourist.ph --role super_admin  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(email, password, name, role)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Admin display name")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "Role: admin or super_admin")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminCreate(email, password, name, role string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}
	if role != model.RoleAdmin && role != model.RoleSuperAdmin {
		return fmt.Errorf("unknown role %q; use admin or super_admin", role)
	}
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	// Prompt for password if not provided
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	reg := newRegistry()
	if len(password) < reg.Auth.RequiredPasswordLength {
		return fmt.Errorf("password must be at least %d characters", reg.Auth.RequiredPasswordLength)
	}

	gw, err := openGateway()
	if err != nil {
		return fmt.Errorf("connect backend: %w", err)
	}
	defer gw.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	err = gw.From("admin_users").Insert(ctx, map[string]interface{}{
		"email":         email,
		"password_hash": auth.Digest(password),
		"name":          name,
		"role":          role,
		"is_active":     true,
		"created_at":    now,
		"updated_at":    now,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created %s account %q\n", role, email)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := openGateway()
			if err != nil {
				return fmt.Errorf("connect backend: %w", err)
			}
			defer gw.Close()

			admins := []model.Admin{}
			err = gw.From("admin_users").OrderBy("created_at", "asc").All(context.Background(), &admins)
			if err != nil {
				return fmt.Errorf("list admins: %w", err)
			}

			if len(admins) == 0 {
				fmt.Println("No admin accounts. Create one with `sugbo admin create`.")
				return nil
			}

			fmt.Printf("%-5s %-35s %-20s %-12s %-8s\n", "ID", "EMAIL", "NAME", "ROLE", "ACTIVE")
			for _, a := range admins {
				fmt.Printf("%-5d %-35s %-20s %-12s %-8t\n", a.ID, a.Email, a.Name, a.Role, a.IsActive)
			}
			return nil
		},
	}
}
