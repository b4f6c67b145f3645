// Package main provides the entry point for the lhaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lhaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lhaudit",
		Short: "Batch Lighthouse auditing and cross-site report aggregation",
		Long: `lhaudit audits a list of websites with the PageSpeed Insights API and
aggregates the Lighthouse results into a single cross-site report.

The report contains score averages, Core Web Vitals statistics with
threshold distributions, and diagnostic issues classified by how many
sites they affect. Reports can be filtered by tag and compared across
runs using the local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewFilterCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
