package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/config"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/database"
	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// Constants for score direction and summary messages.
const (
	scoreDirectionImproved  = "improved"
	scoreDirectionWorsened  = "worsened"
	scoreDirectionUnchanged = "unchanged"
	noIssuesMessage         = "No issues"
)

// NewCompareCmd creates the compare command.
// This command compares aggregate reports stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the latest report with a previous run",
		Long: `Compare displays differences between two stored aggregate reports.

It shows the change in corpus score averages, issues that appeared since
the earlier run, and issues that were resolved. The comparison requires
at least two reports in the history database; every 'lhaudit audit' run
saves one unless --no-db is used.

Examples:
  # Compare the latest two reports
  lhaudit compare

  # List stored reports with their IDs
  lhaudit compare --list

  # Compare the latest report with a specific earlier one
  lhaudit compare --with-report-id 3

  # Output the comparison in JSON format
  lhaudit compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored reports in the history database")
	cmd.Flags().Int64P("with-report-id", "i", 0,
		"Compare the latest report with a specific report by ID (use --list to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	withReportID, err := cmd.Flags().GetInt64("with-report-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no report history found; run 'lhaudit audit' first: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listHistory {
		return listReportHistory(ctx, db)
	}

	return runComparison(ctx, db, withReportID, jsonOutput)
}

// listReportHistory lists all stored reports.
func listReportHistory(ctx context.Context, db *database.HistoryDB) error {
	reports, err := db.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No reports found in the history database.")
		fmt.Println("\nUse 'lhaudit audit' to generate one.")
		return nil
	}

	fmt.Printf("Stored reports (%d):\n\n", len(reports))
	fmt.Printf("  %-6s  %-20s  %-6s  %-6s  %-6s  %s\n", "ID", "Generated", "Sites", "Perf", "SEO", "Issues")
	fmt.Println("  " + strings.Repeat("-", 66))

	for _, meta := range reports {
		fmt.Printf("  %-6d  %-20s  %-6d  %-6s  %-6s  %s\n",
			meta.ID,
			meta.GeneratedAt.Format("2006-01-02 15:04:05"),
			meta.TotalSites,
			formatFloat(meta.AvgPerformance),
			formatFloat(meta.AvgSEO),
			formatIssueSummary(meta.IssueSummary),
		)
	}

	fmt.Println("\nUse 'lhaudit compare' to compare the latest two reports.")
	fmt.Println("Use 'lhaudit compare --with-report-id <id>' to compare with a specific report.")

	return nil
}

// formatIssueSummary formats the bucket counts into a human-readable string.
func formatIssueSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary[model.BucketCritical.String()]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary[model.BucketFrequent.String()]; v > 0 {
		parts = append(parts, fmt.Sprintf("F:%d", v))
	}
	if v := summary[model.BucketOccasional.String()]; v > 0 {
		parts = append(parts, fmt.Sprintf("O:%d", v))
	}

	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the comparison between two stored reports.
func runComparison(ctx context.Context, db *database.HistoryDB, withReportID int64, jsonOutput bool) error {
	reports, err := db.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	if len(reports) == 0 {
		return fmt.Errorf("no reports found in the history database")
	}

	current, err := db.GetReportByID(ctx, reports[0].ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("report with ID %d not found", reports[0].ID)
	}

	var previous *model.AggregateReport
	if withReportID > 0 {
		if withReportID == reports[0].ID {
			return fmt.Errorf("report ID %d is the latest report; pick an earlier one", withReportID)
		}
		previous, err = db.GetReportByID(ctx, withReportID)
		if err != nil {
			return err
		}
		if previous == nil {
			return fmt.Errorf("report with ID %d not found (use --list to see available IDs)", withReportID)
		}
	} else {
		if len(reports) < 2 {
			return fmt.Errorf("at least 2 reports are required for comparison (found %d)", len(reports))
		}
		previous, err = db.GetReportByID(ctx, reports[1].ID)
		if err != nil {
			return err
		}
		if previous == nil {
			return fmt.Errorf("report with ID %d not found", reports[1].ID)
		}
	}

	comparison := compareReports(previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two aggregate reports.
type ComparisonResult struct {
	// PreviousRun contains metadata about the earlier report.
	PreviousRun RunMetadata `json:"previous_run"`

	// CurrentRun contains metadata about the later report.
	CurrentRun RunMetadata `json:"current_run"`

	// ScoreChange describes the change in corpus score averages.
	ScoreChange ScoreChange `json:"score_change"`

	// NewIssues contains issues present in the current report but not
	// the previous one, ordered by ascending ID.
	NewIssues []model.ClassifiedIssue `json:"new_issues,omitempty"`

	// ResolvedIssues contains issues present in the previous report but
	// not the current one, ordered by ascending ID.
	ResolvedIssues []model.ClassifiedIssue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues present in both reports.
	UnchangedCount int `json:"unchanged_count"`
}

// RunMetadata contains metadata about one report for comparison display.
type RunMetadata struct {
	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalSites is the number of sites in the corpus.
	TotalSites int `json:"total_sites"`

	// SuccessfulAudits is the number of non-error sites.
	SuccessfulAudits int `json:"successful_audits"`

	// AvgPerformance is the corpus performance average.
	AvgPerformance float64 `json:"avg_performance"`

	// AvgSEO is the corpus SEO average.
	AvgSEO float64 `json:"avg_seo"`

	// IssueCount is the total number of classified issues.
	IssueCount int `json:"issue_count"`
}

// ScoreChange describes the change in score averages between two runs.
type ScoreChange struct {
	// Direction is "improved", "worsened", or "unchanged", judged by the
	// performance average first and the SEO average as a tiebreaker.
	Direction string `json:"direction"`

	// PerformanceDelta is the change in the performance average.
	PerformanceDelta float64 `json:"performance_delta"`

	// SEODelta is the change in the SEO average.
	SEODelta float64 `json:"seo_delta"`
}

// allIssues flattens the three buckets into one ID-keyed map.
func allIssues(r *model.AggregateReport) map[string]model.ClassifiedIssue {
	issues := make(map[string]model.ClassifiedIssue)
	for _, bucket := range [][]model.ClassifiedIssue{
		r.CommonIssues.Critical,
		r.CommonIssues.Frequent,
		r.CommonIssues.Occasional,
	} {
		for _, issue := range bucket {
			issues[issue.ID] = issue
		}
	}
	return issues
}

// compareReports compares two aggregate reports.
func compareReports(previous, current *model.AggregateReport) *ComparisonResult {
	result := &ComparisonResult{
		PreviousRun: runMetadata(previous),
		CurrentRun:  runMetadata(current),
	}

	previousIssues := allIssues(previous)
	currentIssues := allIssues(current)

	for id, issue := range currentIssues {
		if _, exists := previousIssues[id]; !exists {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}
	for id, issue := range previousIssues {
		if _, exists := currentIssues[id]; !exists {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		} else {
			result.UnchangedCount++
		}
	}

	sort.Slice(result.NewIssues, func(i, j int) bool {
		return result.NewIssues[i].ID < result.NewIssues[j].ID
	})
	sort.Slice(result.ResolvedIssues, func(i, j int) bool {
		return result.ResolvedIssues[i].ID < result.ResolvedIssues[j].ID
	})

	result.ScoreChange = calculateScoreChange(result.PreviousRun, result.CurrentRun)

	return result
}

// runMetadata extracts comparison metadata from a report.
func runMetadata(r *model.AggregateReport) RunMetadata {
	return RunMetadata{
		GeneratedAt:      r.Metadata.GeneratedAt,
		TotalSites:       r.Metadata.TotalSites,
		SuccessfulAudits: r.Metadata.SuccessfulAudits,
		AvgPerformance:   r.Summary.AvgPerformance,
		AvgSEO:           r.Summary.AvgSEO,
		IssueCount:       len(allIssues(r)),
	}
}

// calculateScoreChange computes the score deltas and overall direction.
func calculateScoreChange(previous, current RunMetadata) ScoreChange {
	change := ScoreChange{
		PerformanceDelta: current.AvgPerformance - previous.AvgPerformance,
		SEODelta:         current.AvgSEO - previous.AvgSEO,
	}

	switch {
	case change.PerformanceDelta > 0:
		change.Direction = scoreDirectionImproved
	case change.PerformanceDelta < 0:
		change.Direction = scoreDirectionWorsened
	case change.SEODelta > 0:
		change.Direction = scoreDirectionImproved
	case change.SEODelta < 0:
		change.Direction = scoreDirectionWorsened
	default:
		change.Direction = scoreDirectionUnchanged
	}

	return change
}

// formatFloat renders a score with one decimal, dropping the trailing
// zero for whole numbers.
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// outputComparisonJSON outputs the comparison result as JSON.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result as human-readable text.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("                       REPORT COMPARISON")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	fmt.Printf("Previous: %s  (%d sites, perf %s, seo %s)\n",
		result.PreviousRun.GeneratedAt.Format("2006-01-02 15:04:05"),
		result.PreviousRun.TotalSites,
		formatFloat(result.PreviousRun.AvgPerformance),
		formatFloat(result.PreviousRun.AvgSEO),
	)
	fmt.Printf("Current:  %s  (%d sites, perf %s, seo %s)\n\n",
		result.CurrentRun.GeneratedAt.Format("2006-01-02 15:04:05"),
		result.CurrentRun.TotalSites,
		formatFloat(result.CurrentRun.AvgPerformance),
		formatFloat(result.CurrentRun.AvgSEO),
	)

	fmt.Printf("Scores %s: performance %+.1f, seo %+.1f\n\n",
		result.ScoreChange.Direction,
		result.ScoreChange.PerformanceDelta,
		result.ScoreChange.SEODelta,
	)

	if len(result.NewIssues) > 0 {
		fmt.Printf("New issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("  + %s (%d sites, %s%%)\n", issue.Title, issue.Count, formatFloat(issue.Percentage))
		}
		fmt.Println()
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("Resolved issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("  - %s\n", issue.Title)
		}
		fmt.Println()
	}

	if len(result.NewIssues) == 0 && len(result.ResolvedIssues) == 0 {
		fmt.Println("No issues appeared or were resolved.")
		fmt.Println()
	}

	fmt.Printf("Unchanged issues: %d\n", result.UnchangedCount)

	return nil
}
