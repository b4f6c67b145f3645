package audit

import (
	"sort"

	"github.com/tidwall/gjson"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// metricAudits are audit IDs that restate a Core Web Vitals metric already
// captured numerically by the normalizer. They are excluded from the issue
// list because they are measurements, not remediation opportunities.
var metricAudits = map[string]bool{
	"largest-contentful-paint": true,
	"first-contentful-paint":   true,
	"speed-index":              true,
	"interactive":              true,
	"total-blocking-time":      true,
	"cumulative-layout-shift":  true,
	"max-potential-fid":        true,
	"first-meaningful-paint":   true,
	"server-response-time":     true,
}

// skippedDisplayModes are scoreDisplayMode values that mark an audit as
// non-actionable regardless of its score.
var skippedDisplayModes = map[string]bool{
	"manual":        true,
	"notApplicable": true,
	"informative":   true,
}

// extractIssues scans the payload's audit entries and returns the site's
// diagnostic issues, ordered by ascending audit ID. An audit is an issue
// when it has a non-null score below 1, is not a metric restatement, and
// is not manual/notApplicable/informative.
//
// Definitions for newly observed IDs are registered into reg; the ordered
// scan plus first-seen-wins makes registration deterministic for a given
// corpus order.
func extractIssues(doc gjson.Result, reg *model.IssueRegistry) []model.IssueOccurrence {
	issues := []model.IssueOccurrence{}
	categories := categoryIndex(doc)

	doc.Get("audits").ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if metricAudits[id] {
			return true
		}

		score := value.Get("score")
		if !score.Exists() || score.Type == gjson.Null || score.Float() == 1 {
			return true
		}

		if skippedDisplayModes[value.Get("scoreDisplayMode").String()] {
			return true
		}

		title := value.Get("title").String()
		if title == "" {
			title = id
		}

		issues = append(issues, model.IssueOccurrence{
			ID:    id,
			Title: title,
			Score: score.Float(),
		})

		if reg != nil {
			category := categories[id]
			if category == "" {
				category = "unknown"
			}
			reg.Register(model.IssueDefinition{
				ID:          id,
				Title:       title,
				Description: value.Get("description").String(),
				Category:    category,
			})
		}

		return true
	})

	// gjson preserves document order, which the audit API does not
	// guarantee. Sort by ID so identical inputs always yield identical
	// output ordering.
	sort.Slice(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })

	return issues
}

// categoryIndex maps each referenced audit ID to its category ID by
// walking categories[].auditRefs once per payload.
func categoryIndex(doc gjson.Result) map[string]string {
	index := make(map[string]string)
	doc.Get("categories").ForEach(func(catID, cat gjson.Result) bool {
		cat.Get("auditRefs").ForEach(func(_, ref gjson.Result) bool {
			if id := ref.Get("id").String(); id != "" {
				if _, ok := index[id]; !ok {
					index[id] = catID.String()
				}
			}
			return true
		})
		return true
	})
	return index
}
