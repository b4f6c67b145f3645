package analyze

import (
	"time"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// BuildReport assembles a complete AggregateReport from normalized audit
// results. The same function builds both the persisted batch report and
// transient filtered views, which is what keeps the two consistent.
func BuildReport(sites []model.SiteAuditResult, reg *model.IssueRegistry, generatedAt time.Time) *model.AggregateReport {
	successful := 0
	for _, site := range sites {
		if !site.Error {
			successful++
		}
	}

	if sites == nil {
		sites = []model.SiteAuditResult{}
	}

	return &model.AggregateReport{
		Metadata: model.Metadata{
			GeneratedAt:      generatedAt,
			TotalSites:       len(sites),
			SuccessfulAudits: successful,
			Version:          model.ReportVersion,
		},
		Summary:      Summarize(sites),
		CommonIssues: ClassifyIssues(sites, reg),
		BySite:       sites,
		ByTag:        TagSummaries(sites),
		Tags:         DistinctTags(sites),
	}
}
