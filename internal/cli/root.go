// Package cli implements the auctiond command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "auctiond",
	Short: "auctiond - escrow auction service",
	Long: `auctiond runs an escrow-based English auction service for non-fungible
assets. Sellers place assets into service custody, bidders escrow their
deposits, and the service settles each auction with an anti-snipe deadline
extension and a configurable service fee on refunded bids.`,
	Version: "0.1.0-dev",
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// logLevel resolves the effective log level from flags and config.
func logLevel(configured string) string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "trace"
	case quiet:
		return "critical"
	}
	if configured != "" {
		return configured
	}
	return "info"
}
