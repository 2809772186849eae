package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "authserver",
	Short: "User authentication and authorization API server",
	Long: `authserver registers users, authenticates credentials, issues and
refreshes signed session tokens, and enforces role-based access control
on its user-management API.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
