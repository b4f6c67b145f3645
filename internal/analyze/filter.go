package analyze

import "github.com/lucsmac/lighthouse-audit-dashboard/internal/model"

// Predicate selects sites for a filtered view.
type Predicate func(model.SiteAuditResult) bool

// ByTag returns a predicate matching sites that carry the given tag.
func ByTag(tag string) Predicate {
	return func(site model.SiteAuditResult) bool {
		return site.HasTag(tag)
	}
}

// All returns a predicate matching every site. Viewing a report through
// All reproduces the original report exactly.
func All() Predicate {
	return func(model.SiteAuditResult) bool { return true }
}

// View derives a complete report over the subset of an existing report's
// sites satisfying pred. Classification and statistics are recomputed from
// scratch over the subset with the same issue metadata; counts, percentages
// and bucket membership reflect the subset only.
//
// The recomputation is pure and in-memory: no network or disk access, and
// the source report is never mutated. Calling View twice with the same
// predicate yields identical output.
func View(report *model.AggregateReport, reg *model.IssueRegistry, pred Predicate) *model.AggregateReport {
	if reg == nil {
		reg = report.Registry()
	}

	subset := make([]model.SiteAuditResult, 0, len(report.BySite))
	for _, site := range report.BySite {
		if pred(site) {
			subset = append(subset, site)
		}
	}

	view := BuildReport(subset, reg, report.Metadata.GeneratedAt)
	view.Metadata.Version = report.Metadata.Version
	return view
}
