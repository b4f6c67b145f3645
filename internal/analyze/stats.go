package analyze

import (
	"math"
	"sort"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// metricThresholds is the fixed good/poor boundary table for Core Web
// Vitals classification. A value v is good when v <= good, poor when
// v > poor, and needs-improvement in between. Timing metrics are in
// milliseconds; cls is unitless. Metrics absent from this table (fid)
// get no distribution, only mean and median.
var metricThresholds = map[string]struct{ good, poor float64 }{
	model.MetricLCP: {good: 2500, poor: 4000},
	model.MetricFCP: {good: 1800, poor: 3000},
	model.MetricCLS: {good: 0.10, poor: 0.25},
	model.MetricTBT: {good: 200, poor: 600},
	model.MetricSI:  {good: 3400, poor: 5800},
}

// Summarize computes the score averages and per-metric Core Web Vitals
// statistics over a scope of sites. Errored sites and absent fields are
// skipped; an empty scope yields a zeroed summary with every metric key
// still present.
func Summarize(sites []model.SiteAuditResult) model.Summary {
	summary := model.Summary{
		CoreWebVitals: make(map[string]model.MetricStat, len(model.MetricKeys())),
	}

	var perfSum, seoSum float64
	var perfCount, seoCount int

	for _, site := range sites {
		if site.Error || site.Scores == nil {
			continue
		}
		if site.Scores.Performance != nil {
			perfSum += *site.Scores.Performance
			perfCount++
		}
		if site.Scores.SEO != nil {
			seoSum += *site.Scores.SEO
			seoCount++
		}
	}

	if perfCount > 0 {
		summary.AvgPerformance = round1(perfSum / float64(perfCount))
	}
	if seoCount > 0 {
		summary.AvgSEO = round1(seoSum / float64(seoCount))
	}

	for _, key := range model.MetricKeys() {
		summary.CoreWebVitals[key] = metricStat(sites, key)
	}

	return summary
}

// metricStat aggregates one metric over the scope's present values.
func metricStat(sites []model.SiteAuditResult, key string) model.MetricStat {
	values := make([]float64, 0, len(sites))
	for _, site := range sites {
		if site.Error {
			continue
		}
		if v := site.CoreWebVitals.Metric(key); v != nil {
			values = append(values, *v)
		}
	}

	stat := model.MetricStat{Total: len(values)}
	if len(values) == 0 {
		return stat
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	stat.Mean = round2(sum / float64(len(values)))

	// The median is the element at floor(n/2) of the ascending sort. For
	// even n that is the upper-middle value, not the midpoint average.
	// Stored reports and the dashboard filter both use this rule, so it
	// must not be "corrected" to a conventional median.
	sort.Float64s(values)
	stat.Median = values[len(values)/2]

	t, ok := metricThresholds[key]
	if !ok {
		return stat
	}

	for _, v := range values {
		switch {
		case v <= t.good:
			stat.Good++
		case v > t.poor:
			stat.Poor++
		default:
			stat.NeedsImprovement++
		}
	}

	total := float64(stat.Total)
	stat.GoodPercentage = round1(float64(stat.Good) / total * 100)
	stat.NeedsImprovementPercentage = round1(float64(stat.NeedsImprovement) / total * 100)
	stat.PoorPercentage = round1(float64(stat.Poor) / total * 100)

	return stat
}

// TagSummaries computes the per-tag score averages over the scope's
// non-error sites. Tags carried only by errored sites get no entry.
func TagSummaries(sites []model.SiteAuditResult) map[string]model.TagSummary {
	type tagTally struct {
		perfSum, seoSum float64
		count           int
		sites           []string
	}

	tallies := make(map[string]*tagTally)
	for _, site := range sites {
		if site.Error || site.Scores == nil {
			continue
		}
		for _, tag := range site.Tags {
			tally := tallies[tag]
			if tally == nil {
				tally = &tagTally{}
				tallies[tag] = tally
			}
			if site.Scores.Performance != nil {
				tally.perfSum += *site.Scores.Performance
			}
			if site.Scores.SEO != nil {
				tally.seoSum += *site.Scores.SEO
			}
			tally.count++
			tally.sites = append(tally.sites, site.Name)
		}
	}

	summaries := make(map[string]model.TagSummary, len(tallies))
	for tag, tally := range tallies {
		summaries[tag] = model.TagSummary{
			AvgPerformance: round1(tally.perfSum / float64(tally.count)),
			AvgSEO:         round1(tally.seoSum / float64(tally.count)),
			SitesCount:     tally.count,
			Sites:          tally.sites,
		}
	}
	return summaries
}

// DistinctTags returns the sorted distinct tags across all sites in scope,
// errored sites included: a tag remains listable even when every site
// carrying it failed its audit.
func DistinctTags(sites []model.SiteAuditResult) []string {
	set := make(map[string]bool)
	for _, site := range sites {
		for _, tag := range site.Tags {
			set[tag] = true
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
