package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ---------- login ----------

func newLoginCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist an operator session",
		Long: `Authenticate against the admin_users table and persist the session in the
data directory. Other commands reuse it until it expires or you log out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runLogin(email, password string) error {
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)
	}

	svcs, err := openCLIServices()
	if err != nil {
		return fmt.Errorf("connect backend: %w", err)
	}
	defer svcs.Close()

	if err := svcs.sessions.Login(context.Background(), email, password); err != nil {
		return err
	}

	admin, _ := svcs.sessions.CurrentAdmin()
	fmt.Printf("Logged in as %s (%s)\n", admin.Email, admin.Role)
	return nil
}

// ---------- logout ----------

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the persisted operator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openCLIServices()
			if err != nil {
				return fmt.Errorf("connect backend: %w", err)
			}
			defer svcs.Close()

			svcs.sessions.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// ---------- whoami ----------

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current operator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := openCLIServices()
			if err != nil {
				return fmt.Errorf("connect backend: %w", err)
			}
			defer svcs.Close()

			if !svcs.sessions.Restore() {
				fmt.Println("Not logged in. Run `sugbo login`.")
				return nil
			}

			admin, _ := svcs.sessions.CurrentAdmin()
			fmt.Printf("Logged in as %s (%s)\n", admin.Email, admin.Role)
			if admin.LastLoginAt != nil {
				fmt.Printf("  last login: %s\n", admin.LastLoginAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}
