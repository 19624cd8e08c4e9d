// Package cli defines the commands of the ledger binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version of the ledgerd binary.
const (
	Major  = "1"
	Minor  = "0"
	Fix    = "0"
	Verbal = "Initial"
)

var configDir string //nolint:gochecknoglobals

var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:           "ledgerd",
	Long:          "Ledger - accounts, money movements and audited administration",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Run enters into the cobra command tree.
func Run() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("error executing root command: %w", err)
	}

	return nil
}

var versionCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "version",
	Short: "Describes version.",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Version: %s.%s.%s %s\n", Major, Minor, Fix, Verbal)
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./configs", "directory holding app.env")
	rootCmd.AddCommand(versionCmd)
}
