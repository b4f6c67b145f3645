package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// legacySiteFields carries the fields of the pre-2.0 per-site schema that
// the current model no longer declares. Tag labels used to be stored under
// "temas", and before that each site carried a single "marca" label.
type legacySiteFields struct {
	Temas []string `json:"temas"`
	Marca string   `json:"marca"`
}

// Load reads an aggregate report from r and migrates legacy schema
// variants in place. All migration happens here, at the load boundary;
// everything downstream sees only the current schema.
//
// Migrations applied:
//   - missing by_theme: defaulted to an empty map
//   - missing themes: derived from the by_theme keys, sorted
//   - per-site tags: falls back to the legacy "temas" list, then to a
//     single-element list holding the legacy "marca" label
func Load(r io.Reader) (*model.AggregateReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report model.AggregateReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	if err := migrateLegacyTags(data, &report); err != nil {
		return nil, err
	}
	migrateTagIndex(&report)
	ensureSlices(&report)

	return &report, nil
}

// LoadFile reads an aggregate report from the given path.
func LoadFile(path string) (*model.AggregateReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer f.Close()

	report, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

// migrateLegacyTags fills in per-site tags from the legacy fields for
// sites that lack them. Sites that already carry tags are left alone.
func migrateLegacyTags(data []byte, report *model.AggregateReport) error {
	needsLegacy := false
	for _, site := range report.BySite {
		if len(site.Tags) == 0 {
			needsLegacy = true
			break
		}
	}
	if !needsLegacy {
		return nil
	}

	var shadow struct {
		BySite []legacySiteFields `json:"by_site"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return fmt.Errorf("failed to parse legacy site fields: %w", err)
	}

	for i := range report.BySite {
		if len(report.BySite[i].Tags) > 0 || i >= len(shadow.BySite) {
			continue
		}
		legacy := shadow.BySite[i]
		switch {
		case len(legacy.Temas) > 0:
			report.BySite[i].Tags = legacy.Temas
		case legacy.Marca != "":
			report.BySite[i].Tags = []string{legacy.Marca}
		}
	}
	return nil
}

// migrateTagIndex defaults the tag aggregates for reports persisted
// before the by_theme/themes sections existed.
func migrateTagIndex(report *model.AggregateReport) {
	if report.ByTag == nil {
		report.ByTag = map[string]model.TagSummary{}
	}
	if report.Tags == nil {
		tags := make([]string, 0, len(report.ByTag))
		for tag := range report.ByTag {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		report.Tags = tags
	}
}

// ensureSlices normalizes nil slices to empty ones so a loaded report
// round-trips through encoding/json identically to a freshly built one.
func ensureSlices(report *model.AggregateReport) {
	if report.CommonIssues.Critical == nil {
		report.CommonIssues.Critical = []model.ClassifiedIssue{}
	}
	if report.CommonIssues.Frequent == nil {
		report.CommonIssues.Frequent = []model.ClassifiedIssue{}
	}
	if report.CommonIssues.Occasional == nil {
		report.CommonIssues.Occasional = []model.ClassifiedIssue{}
	}
	if report.BySite == nil {
		report.BySite = []model.SiteAuditResult{}
	}
	for i := range report.BySite {
		if report.BySite[i].Issues == nil {
			report.BySite[i].Issues = []model.IssueOccurrence{}
		}
		if report.BySite[i].Tags == nil {
			report.BySite[i].Tags = []string{}
		}
	}
	if report.Summary.CoreWebVitals == nil {
		report.Summary.CoreWebVitals = map[string]model.MetricStat{}
	}
}
