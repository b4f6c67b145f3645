package analyze

import (
	"math"
	"sort"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// Classification boundaries, in percent of non-error sites in scope.
// A percentage above criticalThreshold is critical; from frequentThreshold
// up to and including criticalThreshold is frequent; below is occasional.
const (
	criticalThreshold = 70.0
	frequentThreshold = 30.0
)

// issueTally accumulates per-issue counts during classification.
type issueTally struct {
	count int
	tags  map[string]bool
}

// ClassifyIssues buckets every issue observed in scope by how many
// non-error sites it affects.
//
// The percentage is round(count/total*1000)/10, one decimal place. Issues
// with a zero count never appear; when the scope has no non-error sites
// all buckets are empty. Within a bucket, issues are ordered by count
// descending with ties broken by ascending issue ID, so the output is
// deterministic for a given scope.
//
// Issue metadata comes from reg when available, falling back to the
// occurrence's own title. The same call works identically over the full
// corpus and over any filtered subset.
func ClassifyIssues(sites []model.SiteAuditResult, reg *model.IssueRegistry) model.CommonIssues {
	classified := model.CommonIssues{
		Critical:   []model.ClassifiedIssue{},
		Frequent:   []model.ClassifiedIssue{},
		Occasional: []model.ClassifiedIssue{},
	}

	total := 0
	tallies := make(map[string]*issueTally)
	titles := make(map[string]string)

	for _, site := range sites {
		if site.Error {
			continue
		}
		total++
		for _, issue := range site.Issues {
			tally := tallies[issue.ID]
			if tally == nil {
				tally = &issueTally{tags: make(map[string]bool)}
				tallies[issue.ID] = tally
				titles[issue.ID] = issue.Title
			}
			tally.count++
			for _, tag := range site.Tags {
				tally.tags[tag] = true
			}
		}
	}

	if total == 0 {
		return classified
	}

	for id, tally := range tallies {
		var def model.IssueDefinition
		var ok bool
		if reg != nil {
			def, ok = reg.Get(id)
		}
		if !ok {
			def = model.IssueDefinition{ID: id, Title: titles[id], Category: "unknown"}
		}

		percentage := math.Round(float64(tally.count)/float64(total)*1000) / 10

		issue := model.ClassifiedIssue{
			IssueDefinition: def,
			Count:           tally.count,
			Percentage:      percentage,
			Tags:            sortedKeys(tally.tags),
		}

		switch {
		case percentage > criticalThreshold:
			classified.Critical = append(classified.Critical, issue)
		case percentage >= frequentThreshold:
			classified.Frequent = append(classified.Frequent, issue)
		default:
			classified.Occasional = append(classified.Occasional, issue)
		}
	}

	sortBucket(classified.Critical)
	sortBucket(classified.Frequent)
	sortBucket(classified.Occasional)

	return classified
}

// sortBucket orders a bucket by count descending, ties by ascending ID.
func sortBucket(bucket []model.ClassifiedIssue) {
	sort.Slice(bucket, func(i, j int) bool {
		if bucket[i].Count != bucket[j].Count {
			return bucket[i].Count > bucket[j].Count
		}
		return bucket[i].ID < bucket[j].ID
	})
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
