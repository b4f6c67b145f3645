package model

import "time"

// ReportVersion identifies the report schema emitted by this build.
const ReportVersion = "2.0.0"

// Metadata describes one report generation run.
type Metadata struct {
	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalSites is the number of sites in the corpus, errored included.
	TotalSites int `json:"total_sites"`

	// SuccessfulAudits is the number of non-error sites.
	SuccessfulAudits int `json:"successful_audits"`

	// Version is the report schema version.
	Version string `json:"version"`
}

// MetricStat aggregates one Core Web Vitals metric over a scope of sites.
// All counts and percentages cover only the values actually present on
// non-error sites; an empty value set yields zeros, never NaN.
type MetricStat struct {
	// Mean is the arithmetic mean of present values, 0 when none.
	Mean float64 `json:"mean"`

	// Median is the value at index floor(n/2) of the ascending sort.
	// For even-length sets this is the upper-middle element, not the
	// midpoint average. Preserved as observed legacy behavior; consumers
	// depend on it matching the interactive filter exactly.
	Median float64 `json:"median"`

	// Total is the number of present values.
	Total int `json:"total"`

	// Good, NeedsImprovement, and Poor are mutually exclusive counts
	// against the metric's fixed thresholds. Metrics without a threshold
	// row stay at zero.
	Good             int `json:"good"`
	NeedsImprovement int `json:"needs_improvement"`
	Poor             int `json:"poor"`

	// The percentage fields are count/Total*100, 0 when Total is 0.
	GoodPercentage             float64 `json:"good_percentage"`
	NeedsImprovementPercentage float64 `json:"needs_improvement_percentage"`
	PoorPercentage             float64 `json:"poor_percentage"`
}

// Summary holds the corpus-level score and metric aggregates.
type Summary struct {
	// AvgPerformance is the mean performance score over non-error sites
	// that report one, 0 when there are none.
	AvgPerformance float64 `json:"avg_performance"`

	// AvgSEO is the mean SEO score over non-error sites that report one.
	AvgSEO float64 `json:"avg_seo"`

	// CoreWebVitals maps metric key to its aggregate statistics.
	CoreWebVitals map[string]MetricStat `json:"core_web_vitals"`
}

// CommonIssues partitions all observed issues by frequency. The three
// buckets are disjoint and together contain exactly the issues with a
// nonzero count in the classified scope. Each bucket is ordered by count
// descending, ties broken by ascending issue ID.
type CommonIssues struct {
	Critical   []ClassifiedIssue `json:"critical"`
	Frequent   []ClassifiedIssue `json:"frequent"`
	Occasional []ClassifiedIssue `json:"occasional"`
}

// TagSummary holds the per-tag score averages.
type TagSummary struct {
	// AvgPerformance is the mean performance score of the tag's non-error
	// sites, rounded to one decimal.
	AvgPerformance float64 `json:"avg_performance"`

	// AvgSEO is the mean SEO score of the tag's non-error sites.
	AvgSEO float64 `json:"avg_seo"`

	// SitesCount is the number of non-error sites carrying the tag.
	SitesCount int `json:"sites_count"`

	// Sites lists the names of those sites.
	Sites []string `json:"sites"`
}

// AggregateReport is the full cross-site report. The batch run builds one
// and persists it; the interactive filter derives transient reports of the
// same shape from BySite without touching the network or disk.
//
// The JSON keys by_theme and themes are kept for compatibility with
// existing dashboard consumers and stored reports.
type AggregateReport struct {
	Metadata     Metadata              `json:"metadata"`
	Summary      Summary               `json:"summary"`
	CommonIssues CommonIssues          `json:"common_issues"`
	BySite       []SiteAuditResult     `json:"by_site"`
	ByTag        map[string]TagSummary `json:"by_theme"`
	Tags         []string              `json:"themes"`
}

// SuccessfulSites returns the non-error results in BySite, in order.
func (r *AggregateReport) SuccessfulSites() []SiteAuditResult {
	sites := make([]SiteAuditResult, 0, len(r.BySite))
	for _, s := range r.BySite {
		if !s.Error {
			sites = append(sites, s)
		}
	}
	return sites
}

// Registry rebuilds an issue definition registry from the classified
// issues of a loaded report. This lets the interactive filter recompute
// views from a persisted report without the original extraction pass.
func (r *AggregateReport) Registry() *IssueRegistry {
	reg := NewIssueRegistry()
	for _, bucket := range [][]ClassifiedIssue{
		r.CommonIssues.Critical,
		r.CommonIssues.Frequent,
		r.CommonIssues.Occasional,
	} {
		for _, issue := range bucket {
			reg.Register(issue.IssueDefinition)
		}
	}
	return reg
}
