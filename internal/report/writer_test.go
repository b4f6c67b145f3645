package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.AggregateReport {
	perf1, seo1 := 85.0, 92.0
	perf2, seo2 := 45.0, 88.0

	return &model.AggregateReport{
		Metadata: model.Metadata{
			GeneratedAt:      time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
			TotalSites:       3,
			SuccessfulAudits: 2,
			Version:          model.ReportVersion,
		},
		Summary: model.Summary{
			AvgPerformance: 65.0,
			AvgSEO:         90.0,
			CoreWebVitals: map[string]model.MetricStat{
				model.MetricLCP: {
					Mean:           3050,
					Median:         3000,
					Total:          2,
					Good:           1,
					Poor:           1,
					GoodPercentage: 50,
					PoorPercentage: 50,
				},
			},
		},
		CommonIssues: model.CommonIssues{
			Critical: []model.ClassifiedIssue{
				{
					IssueDefinition: model.IssueDefinition{
						ID:       "render-blocking-resources",
						Title:    "Eliminate render-blocking resources",
						Category: "performance",
					},
					Count:      2,
					Percentage: 100,
				},
			},
			Frequent:   []model.ClassifiedIssue{},
			Occasional: []model.ClassifiedIssue{},
		},
		BySite: []model.SiteAuditResult{
			model.NewSiteAuditResult(
				model.Site{ID: "alpha", Name: "Alpha Store", Domain: "alpha.example.com", Tags: []string{"retail"}},
				&model.Scores{Performance: &perf1, SEO: &seo1},
				&model.CoreWebVitals{LCP: floatPtr(2000)},
				[]model.IssueOccurrence{{ID: "render-blocking-resources", Title: "Eliminate render-blocking resources", Score: 0.4}},
			),
			model.NewSiteAuditResult(
				model.Site{ID: "beta", Name: "Beta Store", Domain: "beta.example.com", Tags: []string{"retail"}},
				&model.Scores{Performance: &perf2, SEO: &seo2},
				&model.CoreWebVitals{LCP: floatPtr(4100)},
				[]model.IssueOccurrence{{ID: "render-blocking-resources", Title: "Eliminate render-blocking resources", Score: 0.2}},
			),
			model.NewErrorResult(
				model.Site{ID: "gamma", Name: "Gamma Store", Domain: "gamma.example.com", Tags: []string{"media"}},
			),
		},
		ByTag: map[string]model.TagSummary{
			"retail": {
				AvgPerformance: 65.0,
				AvgSEO:         90.0,
				SitesCount:     2,
				Sites:          []string{"Alpha Store", "Beta Store"},
			},
		},
		Tags: []string{"media", "retail"},
	}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SITE AUDIT REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Sites Audited:     3") {
			t.Error("expected output to contain site count")
		}
		if !strings.Contains(output, "Failed Audits:     1") {
			t.Error("expected output to contain failed audit count")
		}
	})

	t.Run("writes score summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SCORE SUMMARY") {
			t.Error("expected output to contain score summary")
		}
		if !strings.Contains(output, "PERFORMANCE: 65") {
			t.Error("expected output to contain performance average")
		}
	})

	t.Run("writes classified issues", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CRITICAL (>70% of sites)") {
			t.Error("expected output to contain critical bucket")
		}
		if !strings.Contains(output, "Eliminate render-blocking resources") {
			t.Error("expected output to contain issue title")
		}
		if !strings.Contains(output, "Sites: 2 (100%)") {
			t.Error("expected output to contain issue frequency")
		}
	})

	t.Run("verbose lists every site including failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Alpha Store") {
			t.Error("expected verbose output to list sites")
		}
		if !strings.Contains(output, "AUDIT FAILED") {
			t.Error("expected verbose output to mark failed audits")
		}
	})

	t.Run("non-verbose omits site list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "AUDIT FAILED") {
			t.Error("expected site list to be omitted without verbose")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes written, buffer has %d", n, buf.Len())
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
	})

	t.Run("uses compatibility key names", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]json.RawMessage
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		for _, key := range []string{"metadata", "summary", "common_issues", "by_site", "by_theme", "themes"} {
			if _, ok := decoded[key]; !ok {
				t.Errorf("expected top-level key %q", key)
			}
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"metadata\"") {
			t.Error("expected indented output")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes markdown sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Site Audit Report",
			"## Score Summary",
			"## Core Web Vitals",
			"## Common Issues",
			"## By Tag",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("includes mermaid pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "```mermaid") {
			t.Error("expected output to contain mermaid code block")
		}
		if !strings.Contains(output, "Issue Frequency Distribution") {
			t.Error("expected output to contain chart title")
		}
	})

	t.Run("handles report with no issues", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.CommonIssues = model.CommonIssues{
			Critical:   []model.ClassifiedIssue{},
			Frequent:   []model.ClassifiedIssue{},
			Occasional: []model.ClassifiedIssue{},
		}

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No issues detected") {
			t.Error("expected empty-issues message")
		}
	})
}

// TestMultiWriter tests composing writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var jsonBuf, textBuf bytes.Buffer
		mw := NewMultiWriter(
			NewJSONWriter(&jsonBuf),
			NewSimpleWriter(&textBuf),
		)

		if _, err := mw.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if jsonBuf.Len() == 0 {
			t.Error("expected JSON writer to receive output")
		}
		if textBuf.Len() == 0 {
			t.Error("expected simple writer to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(
			&failingWriter{},
			NewSimpleWriter(&buf),
		)

		if _, err := mw.Write(createTestReport()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected writers after the failure to be skipped")
		}
	})
}

type failingWriter struct{}

func (f *failingWriter) Write(_ *model.AggregateReport) (int, error) {
	return 0, errors.New("write failed")
}

// TestReportRoundTrip verifies a report survives persisting and loading
// unchanged, which the interactive filter relies on.
func TestReportRoundTrip(t *testing.T) {
	t.Parallel()

	original := createTestReport()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(original); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("round-tripped report differs from original\noriginal: %+v\nloaded: %+v", original, loaded)
	}
}
