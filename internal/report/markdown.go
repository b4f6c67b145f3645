package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing audit summaries
// on GitHub, where the mermaid pie chart renders inline.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AggregateReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeVitals(md, report)
	w.writeIssues(md, report)
	w.writeTags(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AggregateReport) {
	md.H1("Site Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Sites Audited", strconv.Itoa(report.Metadata.TotalSites)},
			{"Successful Audits", strconv.Itoa(report.Metadata.SuccessfulAudits)},
			{"Schema Version", report.Metadata.Version},
		},
	})
	md.PlainText("")
}

// writeSummary writes the corpus-level score averages.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Score Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Score", "Average"},
		Rows: [][]string{
			{"Performance", formatFloat(report.Summary.AvgPerformance)},
			{"SEO", formatFloat(report.Summary.AvgSEO)},
		},
	})
	md.PlainText("")

	critical := len(report.CommonIssues.Critical)
	switch {
	case critical > 0:
		md.Cautionf("%d issue(s) affect more than 70%% of audited sites.", critical)
	case len(report.CommonIssues.Frequent) > 0:
		md.Warningf("%d issue(s) affect 30-70%% of audited sites.", len(report.CommonIssues.Frequent))
	default:
		md.Tip("No widespread issues detected across the corpus.")
	}
	md.PlainText("")
}

// writeVitals writes the Core Web Vitals statistics table.
func (w *MarkdownWriter) writeVitals(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Core Web Vitals")
	md.PlainText("")

	rows := make([][]string, 0, len(model.MetricKeys()))
	for _, key := range model.MetricKeys() {
		stat, ok := report.Summary.CoreWebVitals[key]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			key,
			formatFloat(stat.Mean),
			formatFloat(stat.Median),
			strconv.Itoa(stat.Good),
			strconv.Itoa(stat.NeedsImprovement),
			strconv.Itoa(stat.Poor),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Mean", "Median", "Good", "Needs Improvement", "Poor"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeIssues writes the frequency-classified issue tables and a pie
// chart of the bucket distribution.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Common Issues")
	md.PlainText("")

	total := len(report.CommonIssues.Critical) + len(report.CommonIssues.Frequent) + len(report.CommonIssues.Occasional)
	if total == 0 {
		md.PlainText("No issues detected across the audited sites.")
		md.PlainText("")
		return
	}

	w.writeBucketChart(md, report)

	buckets := []struct {
		header string
		issues []model.ClassifiedIssue
	}{
		{"🔴 Critical (>70% of sites)", report.CommonIssues.Critical},
		{"🟠 Frequent (30-70% of sites)", report.CommonIssues.Frequent},
		{"🟡 Occasional (<30% of sites)", report.CommonIssues.Occasional},
	}

	for _, bucket := range buckets {
		if len(bucket.issues) == 0 {
			continue
		}

		md.PlainText("### " + bucket.header)
		md.PlainText("")

		rows := make([][]string, 0, len(bucket.issues))
		for _, issue := range bucket.issues {
			rows = append(rows, []string{
				issue.Title,
				issue.Category,
				strconv.Itoa(issue.Count),
				formatFloat(issue.Percentage) + "%",
			})
		}

		md.Table(markdown.TableSet{
			Header: []string{"Issue", "Category", "Sites", "Share"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeBucketChart writes a mermaid pie chart of the bucket distribution.
func (w *MarkdownWriter) writeBucketChart(md *markdown.Markdown, report *model.AggregateReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Frequency Distribution"),
		piechart.WithShowData(true),
	)

	if n := len(report.CommonIssues.Critical); n > 0 {
		chart.LabelAndIntValue("Critical", uint64(n))
	}
	if n := len(report.CommonIssues.Frequent); n > 0 {
		chart.LabelAndIntValue("Frequent", uint64(n))
	}
	if n := len(report.CommonIssues.Occasional); n > 0 {
		chart.LabelAndIntValue("Occasional", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeTags writes the per-tag score table.
func (w *MarkdownWriter) writeTags(md *markdown.Markdown, report *model.AggregateReport) {
	if len(report.Tags) == 0 {
		return
	}

	md.H2("By Tag")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Tags))
	for _, tag := range report.Tags {
		summary, ok := report.ByTag[tag]
		if !ok {
			// Tag carried only by errored sites: listed, no averages.
			rows = append(rows, []string{tag, "-", "-", "0"})
			continue
		}
		rows = append(rows, []string{
			tag,
			formatFloat(summary.AvgPerformance),
			formatFloat(summary.AvgSEO),
			strconv.Itoa(summary.SitesCount),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Tag", "Performance", "SEO", "Sites"},
		Rows:   rows,
	})
	md.PlainText("")
}

// formatFloat renders a float with one decimal, dropping the trailing
// zero for whole numbers so tables read cleanly.
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%.1f", v)
}
