package audit

import (
	"github.com/tidwall/gjson"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// Normalize builds a SiteAuditResult from a raw Lighthouse payload.
//
// Each score and metric field is read independently; a missing field yields
// nil for that field only. Only a structurally unusable payload (not JSON,
// or no top-level categories object) produces the site-level error state.
// New issue definitions observed in the payload are registered into reg
// with first-seen-wins semantics.
func Normalize(site model.Site, payload []byte, reg *model.IssueRegistry) model.SiteAuditResult {
	if len(payload) == 0 || !gjson.ValidBytes(payload) {
		return model.NewErrorResult(site)
	}

	doc := gjson.ParseBytes(payload)
	if !doc.Get("categories").IsObject() {
		return model.NewErrorResult(site)
	}

	scores := extractScores(doc)
	cwv := extractCoreWebVitals(doc)
	issues := extractIssues(doc, reg)

	return model.NewSiteAuditResult(site, scores, cwv, issues)
}

// extractScores reads the category scores, scaling from the payload's 0-1
// range to the report's 0-100 range. Absent categories stay nil.
func extractScores(doc gjson.Result) *model.Scores {
	return &model.Scores{
		Performance: categoryScore(doc, "performance"),
		SEO:         categoryScore(doc, "seo"),
	}
}

func categoryScore(doc gjson.Result, category string) *float64 {
	score := doc.Get("categories." + category + ".score")
	if !score.Exists() || score.Type == gjson.Null {
		return nil
	}
	v := score.Float() * 100
	return &v
}

// extractCoreWebVitals reads the numeric value of each metric audit.
// FID uses max-potential-fid as a proxy since the field metric cannot be
// measured in a lab run.
func extractCoreWebVitals(doc gjson.Result) *model.CoreWebVitals {
	return &model.CoreWebVitals{
		LCP: numericValue(doc, "largest-contentful-paint"),
		FID: numericValue(doc, "max-potential-fid"),
		CLS: numericValue(doc, "cumulative-layout-shift"),
		FCP: numericValue(doc, "first-contentful-paint"),
		TBT: numericValue(doc, "total-blocking-time"),
		SI:  numericValue(doc, "speed-index"),
	}
}

func numericValue(doc gjson.Result, auditID string) *float64 {
	v := doc.Get("audits." + auditID + ".numericValue")
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	f := v.Float()
	return &f
}
