// Package cli implements the minte command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "minte",
	Short: "Multi-currency ledger and settlement rules engine",
	Long: `minte executes a bootstrap plus command sequence against an in-memory
multi-currency ledger: exchange-rate conversion, tiered fees and cashback,
business-account roles, and unanimous-consent split payments. Results are
written as an ordered list of output records.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to TOML configuration file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
