package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/analyze"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/collect"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/config"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/database"
	internallog "github.com/lucsmac/lighthouse-audit-dashboard/internal/log"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit all sites in the site list and build an aggregate report",
		Long: `Audit runs a Lighthouse audit for every site in the YAML site list via
the PageSpeed Insights API and aggregates the results.

For each site it collects the performance and SEO scores, the Core Web
Vitals metric values, and the failed diagnostic audits. The aggregate
report classifies every issue by the share of sites it affects:

  critical    more than 70% of audited sites
  frequent    30% to 70% of audited sites
  occasional  fewer than 30% of audited sites

Sites whose audit fails stay listed in the report but are excluded from
every average and percentage. Interrupting a long batch with Ctrl-C
still produces a report over the sites audited so far.

An API key is required; get one at
https://developers.google.com/speed/docs/insights/v5/get-started

Examples:
  # Audit all sites in sites.yaml (reads GOOGLE_API_KEY from the environment)
  lhaudit audit --sites sites.yaml

  # Write a JSON report for the dashboard
  lhaudit audit --sites sites.yaml --json --output report.json

  # Smoke-test the first 5 sites with desktop strategy
  lhaudit audit --sites sites.yaml --limit 5 --strategy desktop

  # Faster collection against a generous quota
  lhaudit audit --sites sites.yaml --concurrency 4 --delay 500ms`,
		Args: cobra.NoArgs,
		RunE: runAuditCmd,
	}

	// API flags
	cmd.Flags().StringP("api-key", "k", "",
		"PageSpeed Insights API key (default: GOOGLE_API_KEY environment variable)")
	cmd.Flags().String("endpoint", config.DefaultAPIEndpoint,
		"PageSpeed Insights API endpoint")

	// Collection behavior flags
	cmd.Flags().StringP("sites", "s", "",
		"Path to the YAML site list (required)")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Delay between API requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Number of audits collected in parallel")
	cmd.Flags().IntP("limit", "l", 0,
		"Audit only the first N sites (0 audits the whole list)")
	cmd.Flags().String("strategy", config.DefaultStrategy,
		`Lighthouse strategy: "mobile" or "desktop"`)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-db", false,
		"Skip saving the report to the history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. The secure logger masks the API key in
	// every log record, including request URLs.
	logger := internallog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing completed audits...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(config.APIKeyEnv)
	}

	cfg.APIEndpoint, err = cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, err
	}

	cfg.SitesFile, err = cmd.Flags().GetString("sites")
	if err != nil {
		return nil, err
	}

	cfg.RequestDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Limit, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}

	cfg.Strategy, err = cmd.Flags().GetString("strategy")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runAudit executes the audit batch and outputs the aggregate report.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	sites, err := config.LoadSitesFile(cfg.SitesFile)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		return fmt.Errorf("site list %s contains no sites", cfg.SitesFile)
	}
	if cfg.Limit > 0 && cfg.Limit < len(sites) {
		sites = sites[:cfg.Limit]
	}

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	fmt.Printf("Auditing %d sites (strategy: %s, concurrency: %d)...\n\n",
		len(sites), cfg.Strategy, cfg.Concurrency)

	startTime := time.Now()

	collector := collect.New(cfg, collect.WithLogger(logger))
	results, registry, runErr := collector.Run(ctx, sites)

	if runErr != nil {
		// A cancelled batch still yields a report over the completed sites.
		if len(results) == 0 {
			return runErr
		}
		fmt.Fprintf(os.Stderr, "Collection interrupted: %v\n", runErr)
		fmt.Fprintf(os.Stderr, "Building report over %d of %d sites.\n\n", len(results), len(sites))
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Collection completed in %s\n\n", elapsed.Round(time.Millisecond))

	aggregate := analyze.BuildReport(results, registry, time.Now())

	if err := outputReport(cfg, aggregate); err != nil {
		return err
	}

	// Save even after cancellation; the batch context is already done.
	if err := saveReport(context.Background(), db, aggregate, logger); err != nil {
		logger.Error("failed to save report", "error", err)
	}

	return nil
}

// outputReport outputs the aggregate report in the requested format.
func outputReport(cfg *config.Config, aggregate *model.AggregateReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
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
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(aggregate)
	return err
}

// saveReport saves the aggregate report to the history database.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.HistoryDB, aggregate *model.AggregateReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveReport(ctx, aggregate)
	if err != nil {
		return err
	}

	logger.Info("report saved to history", "id", id)
	return nil
}
