package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/config"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/database"
)

// NewHistoryCmd creates the history command.
// It is the standalone spelling of 'compare --list'.
func NewHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List stored reports",
		Long: `History lists every report in the local history database with its ID,
generation time, corpus size, score averages, and issue bucket counts.

Report IDs shown here can be passed to 'lhaudit compare --with-report-id'.

Examples:
  # List all stored reports
  lhaudit history`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
}

// runHistoryCmd executes the history command.
func runHistoryCmd(_ *cobra.Command, _ []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no report history found; run 'lhaudit audit' first: %w", err)
	}
	defer db.Close()

	return listReportHistory(context.Background(), db)
}
