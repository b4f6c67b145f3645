package model

// Site holds the identity of an audited website, independent of any audit
// outcome. It comes from the site list configuration, not from the audit API.
type Site struct {
	// ID is a stable identifier for the site within the corpus.
	ID string `json:"id"`

	// Name is the human-readable site name.
	Name string `json:"name"`

	// Slug is a URL-safe short name.
	Slug string `json:"slug,omitempty"`

	// Domain is the site's domain, with or without scheme.
	Domain string `json:"domain"`

	// Account is the owning account or customer, when known.
	Account string `json:"account,omitempty"`

	// Tags are the grouping labels attached to the site. A site may carry
	// several tags; duplicates in the source are collapsed on load.
	Tags []string `json:"tags"`
}

// HasTag reports whether the site carries the given tag.
func (s Site) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Scores holds the normalized category scores on a 0-100 scale.
// A nil field means the audit payload did not report that category.
type Scores struct {
	Performance *float64 `json:"performance"`
	SEO         *float64 `json:"seo"`
}

// CoreWebVitals holds the raw Core Web Vitals metric values for one site.
// All timing metrics are in milliseconds; CLS is unitless. A nil field means
// the metric was absent from the audit payload. Missing individual metrics do
// not make the site an error; only a structurally unusable payload does.
type CoreWebVitals struct {
	LCP *float64 `json:"lcp"`
	FID *float64 `json:"fid"`
	CLS *float64 `json:"cls"`
	FCP *float64 `json:"fcp"`
	TBT *float64 `json:"tbt"`
	SI  *float64 `json:"si"`
}

// Metric returns the value of the named metric, or nil when absent.
// Unknown metric keys return nil so downstream statistics ignore them.
func (c *CoreWebVitals) Metric(key string) *float64 {
	if c == nil {
		return nil
	}
	switch key {
	case MetricLCP:
		return c.LCP
	case MetricFID:
		return c.FID
	case MetricCLS:
		return c.CLS
	case MetricFCP:
		return c.FCP
	case MetricTBT:
		return c.TBT
	case MetricSI:
		return c.SI
	default:
		return nil
	}
}

// Core Web Vitals metric keys as they appear in report JSON.
const (
	MetricLCP = "lcp"
	MetricFID = "fid"
	MetricCLS = "cls"
	MetricFCP = "fcp"
	MetricTBT = "tbt"
	MetricSI  = "si"
)

// MetricKeys lists all Core Web Vitals keys in canonical report order.
func MetricKeys() []string {
	return []string{MetricLCP, MetricFID, MetricCLS, MetricFCP, MetricTBT, MetricSI}
}

// IssueOccurrence records one diagnostic issue present on one site.
// The per-site issue list is ordered by ascending issue ID so identical
// inputs always serialize identically.
type IssueOccurrence struct {
	// ID is the audit identifier, e.g. "render-blocking-resources".
	ID string `json:"id"`

	// Title is the short human-readable audit title.
	Title string `json:"title"`

	// Score is the audit score in [0, 1). Perfect audits are not issues.
	Score float64 `json:"score"`
}

// SiteAuditResult is one site's normalized audit outcome. It is created once
// per audit run by the normalizer/extractor pair and read-only afterward.
//
// Invariant: Error == true exactly when Scores and CoreWebVitals are nil and
// Issues is empty. NewErrorResult and NewSiteAuditResult are the only intended
// constructors and both uphold it.
type SiteAuditResult struct {
	Site

	// Scores holds the category scores, nil when the audit failed.
	Scores *Scores `json:"scores"`

	// CoreWebVitals holds the raw metric values, nil when the audit failed.
	CoreWebVitals *CoreWebVitals `json:"core_web_vitals"`

	// IssuesCount duplicates len(Issues) for consumers that only need the
	// number, matching the persisted report shape.
	IssuesCount int `json:"issues_count"`

	// Issues lists the diagnostic issues found, ordered by ascending ID.
	Issues []IssueOccurrence `json:"issues"`

	// Error is true when the audit failed or the payload was unusable.
	// Errored sites are listed in by_site but excluded from every aggregate.
	Error bool `json:"error"`
}

// NewSiteAuditResult creates a successful audit result for the given site.
func NewSiteAuditResult(site Site, scores *Scores, cwv *CoreWebVitals, issues []IssueOccurrence) SiteAuditResult {
	if issues == nil {
		issues = []IssueOccurrence{}
	}
	return SiteAuditResult{
		Site:          site,
		Scores:        scores,
		CoreWebVitals: cwv,
		IssuesCount:   len(issues),
		Issues:        issues,
	}
}

// NewErrorResult creates the error-state result for a site whose audit
// failed. The site stays visible in by_site by identity only.
func NewErrorResult(site Site) SiteAuditResult {
	return SiteAuditResult{
		Site:   site,
		Issues: []IssueOccurrence{},
		Error:  true,
	}
}

// HasIssue reports whether the site's issue list contains the given ID.
func (r SiteAuditResult) HasIssue(id string) bool {
	for _, issue := range r.Issues {
		if issue.ID == id {
			return true
		}
	}
	return false
}
