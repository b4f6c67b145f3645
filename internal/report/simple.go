package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables per-site detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-site details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AggregateReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeVitals(&sb, report)
	w.writeIssues(&sb, report)
	if w.verbose {
		w.writeSites(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AggregateReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       SITE AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated:         %s\n", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Sites Audited:     %d\n", report.Metadata.TotalSites))
	sb.WriteString(fmt.Sprintf("Successful Audits: %d\n", report.Metadata.SuccessfulAudits))

	if failed := report.Metadata.TotalSites - report.Metadata.SuccessfulAudits; failed > 0 {
		sb.WriteString(fmt.Sprintf("Failed Audits:     %d\n", failed))
	}

	sb.WriteString("\n")
}

// writeSummary writes the corpus-level score averages.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AggregateReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SCORE SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  PERFORMANCE: %s\n", formatFloat(report.Summary.AvgPerformance)))
	sb.WriteString(fmt.Sprintf("  SEO:         %s\n", formatFloat(report.Summary.AvgSEO)))
	sb.WriteString("\n")
}

// writeVitals writes the Core Web Vitals statistics section.
func (w *SimpleWriter) writeVitals(sb *strings.Builder, report *model.AggregateReport) {
	if len(report.Summary.CoreWebVitals) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CORE WEB VITALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Summary.CoreWebVitals) == 0 {
		sb.WriteString("  No metric values collected\n\n")
		return
	}

	for _, key := range model.MetricKeys() {
		stat, ok := report.Summary.CoreWebVitals[key]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-4s mean=%s median=%s", strings.ToUpper(key), formatFloat(stat.Mean), formatFloat(stat.Median)))
		if stat.Total > 0 {
			sb.WriteString(fmt.Sprintf("  (good=%d ni=%d poor=%d)", stat.Good, stat.NeedsImprovement, stat.Poor))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeIssues writes the frequency-classified issue buckets.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.AggregateReport) {
	total := len(report.CommonIssues.Critical) + len(report.CommonIssues.Frequent) + len(report.CommonIssues.Occasional)
	if total == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("COMMON ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if total == 0 {
		sb.WriteString("  No issues detected\n\n")
		return
	}

	buckets := []struct {
		indicator string
		name      string
		issues    []model.ClassifiedIssue
	}{
		{"!!!", "CRITICAL (>70% of sites)", report.CommonIssues.Critical},
		{"!!", "FREQUENT (30-70% of sites)", report.CommonIssues.Frequent},
		{"!", "OCCASIONAL (<30% of sites)", report.CommonIssues.Occasional},
	}

	for _, bucket := range buckets {
		if len(bucket.issues) == 0 && !w.showEmpty {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s] %s\n", bucket.indicator, bucket.name))

		if len(bucket.issues) == 0 {
			sb.WriteString("  No issues\n\n")
			continue
		}

		for _, issue := range bucket.issues {
			sb.WriteString(fmt.Sprintf("  * %s\n", issue.Title))
			sb.WriteString(fmt.Sprintf("    Sites: %d (%s%%)\n", issue.Count, formatFloat(issue.Percentage)))
			if issue.Category != "" {
				sb.WriteString(fmt.Sprintf("    Category: %s\n", issue.Category))
			}
		}
		sb.WriteString("\n")
	}
}

// writeSites writes the per-site score breakdown.
func (w *SimpleWriter) writeSites(sb *strings.Builder, report *model.AggregateReport) {
	if len(report.BySite) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SITES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, site := range report.BySite {
		if site.Error {
			sb.WriteString(fmt.Sprintf("  [x] %-30s AUDIT FAILED\n", site.Name))
			continue
		}

		perf := "-"
		seo := "-"
		if site.Scores != nil {
			if site.Scores.Performance != nil {
				perf = formatFloat(*site.Scores.Performance)
			}
			if site.Scores.SEO != nil {
				seo = formatFloat(*site.Scores.SEO)
			}
		}
		sb.WriteString(fmt.Sprintf("  [+] %-30s perf=%-5s seo=%-5s issues=%d\n", site.Name, perf, seo, site.IssuesCount))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by lighthouse-audit-dashboard\n")
	sb.WriteString("https://github.com/lucsmac/lighthouse-audit-dashboard\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
