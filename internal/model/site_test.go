package model

import "testing"

func TestErrorStateInvariant(t *testing.T) {
	t.Parallel()

	t.Run("error result", func(t *testing.T) {
		t.Parallel()

		result := NewErrorResult(Site{ID: "a", Domain: "a.example.com"})

		if !result.Error {
			t.Error("error flag not set")
		}
		if result.Scores != nil || result.CoreWebVitals != nil {
			t.Error("errored site must have nil scores and vitals")
		}
		if result.Issues == nil || len(result.Issues) != 0 {
			t.Error("errored site must have an empty, non-nil issue list")
		}
	})

	t.Run("successful result", func(t *testing.T) {
		t.Parallel()

		perf := 75.0
		result := NewSiteAuditResult(Site{ID: "b"}, &Scores{Performance: &perf}, &CoreWebVitals{}, nil)

		if result.Error {
			t.Error("error flag set on success")
		}
		if result.Issues == nil {
			t.Error("nil issues must normalize to an empty slice")
		}
		if result.IssuesCount != 0 {
			t.Errorf("issues_count = %d, want 0", result.IssuesCount)
		}
	})
}

func TestCoreWebVitalsMetric(t *testing.T) {
	t.Parallel()

	lcp := 2100.0
	cls := 0.05
	cwv := &CoreWebVitals{LCP: &lcp, CLS: &cls}

	if v := cwv.Metric(MetricLCP); v == nil || *v != 2100 {
		t.Errorf("lcp = %v, want 2100", v)
	}
	if v := cwv.Metric(MetricCLS); v == nil || *v != 0.05 {
		t.Errorf("cls = %v, want 0.05", v)
	}
	if v := cwv.Metric(MetricTBT); v != nil {
		t.Errorf("absent metric = %v, want nil", v)
	}
	if v := cwv.Metric("not-a-metric"); v != nil {
		t.Error("unknown metric key must be ignored, not panic")
	}

	var nilCWV *CoreWebVitals
	if v := nilCWV.Metric(MetricLCP); v != nil {
		t.Error("nil receiver must return nil")
	}
}

func TestSiteHasTag(t *testing.T) {
	t.Parallel()

	site := Site{Tags: []string{"fashion", "auto"}}

	if !site.HasTag("auto") {
		t.Error("expected auto tag")
	}
	if site.HasTag("food") {
		t.Error("unexpected food tag")
	}
	if (Site{}).HasTag("any") {
		t.Error("tagless site matches nothing")
	}
}
