// Package cli implements the sugbo command tree: the API server, backend
// setup, admin account management, and operator session commands.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sugbo",
		Short: "Admin backend for the Cebu tourism platform",
		Long: `Sugbo is the administrative backend for the Cebu tourism platform.

It manages tourist destinations, local delicacies, and traveler profiles
over a SQL backend, with role-gated admin accounts, a full audit trail for
every mutation, and JSON/CSV catalog exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sugbo.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for local state (default: ~/.sugbo)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sugbo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.sugbo")
	}

	viper.SetEnvPrefix("SUGBO")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}
