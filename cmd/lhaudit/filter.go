package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/analyze"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/config"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/database"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/report"
)

// NewFilterCmd creates the filter command.
// This command derives a tag-scoped report from an existing one without
// re-auditing any site.
func NewFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Derive a tag-scoped report from an existing one",
		Long: `Filter recomputes an aggregate report over the subset of sites carrying
a given tag. Every statistic is recomputed for the subset: issue counts
and percentages, score averages, and Core Web Vitals distributions.

No network access happens; the subset report is derived entirely from
the stored per-site results. Filtering without a tag recomputes the
report over all sites, which reproduces it exactly.

By default the latest report from the history database is used. Use
--input to filter a report file instead, for example one written by
'lhaudit audit --json --output report.json'.

Examples:
  # Filter the latest stored report by tag
  lhaudit filter --tag retail

  # Filter a report file and write the subset as JSON
  lhaudit filter --tag retail --input report.json --json --output retail.json

  # Markdown summary for a tag
  lhaudit filter --tag media --markdown`,
		Args: cobra.NoArgs,
		RunE: runFilterCmd,
	}

	cmd.Flags().StringP("tag", "T", "",
		"Tag to filter sites by (empty recomputes over all sites)")
	cmd.Flags().StringP("input", "i", "",
		"Report file to filter (default: latest report from the history database)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runFilterCmd executes the filter command.
func runFilterCmd(cmd *cobra.Command, _ []string) error {
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return err
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	baseReport, err := loadBaseReport(input)
	if err != nil {
		return err
	}

	pred := analyze.All()
	if tag != "" {
		pred = analyze.ByTag(tag)
	}

	view := analyze.View(baseReport, baseReport.Registry(), pred)
	if tag != "" && view.Metadata.TotalSites == 0 {
		fmt.Fprintf(os.Stderr, "No sites carry tag %q; the report is empty.\n", tag)
	}

	return writeFilteredReport(view, outputPath, jsonOutput, markdownOutput, getVerboseFlag(cmd))
}

// loadBaseReport loads the report to filter, from a file when given or
// from the history database otherwise.
func loadBaseReport(input string) (*model.AggregateReport, error) {
	if input != "" {
		return report.LoadFile(input)
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("no report history found; run 'lhaudit audit' first or pass --input: %w", err)
	}
	defer db.Close()

	latest, err := db.GetLatestReport(context.Background())
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errors.New("report history is empty; run 'lhaudit audit' first or pass --input")
	}
	return latest, nil
}

// writeFilteredReport outputs the derived report in the requested format.
func writeFilteredReport(view *model.AggregateReport, outputPath string, jsonOutput, markdownOutput, verbose bool) error {
	var output *os.File
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(verbose))
	}

	_, err := writer.Write(view)
	return err
}
