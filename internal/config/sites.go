package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lucsmac/lighthouse-audit-dashboard/internal/model"
)

// SiteEntry is one site in the YAML site list.
type SiteEntry struct {
	// ID is a stable identifier. Defaults to the slug, then the domain.
	ID string `yaml:"id,omitempty"`

	// Name is the human-readable site name. Defaults to the domain.
	Name string `yaml:"name,omitempty"`

	// Slug is a URL-safe short name.
	Slug string `yaml:"slug,omitempty"`

	// Domain is the site's domain. Entries without a domain are skipped.
	Domain string `yaml:"domain"`

	// Account is the owning account or customer.
	Account string `yaml:"account,omitempty"`

	// Tags are the grouping labels for this entry.
	Tags []string `yaml:"tags,omitempty"`
}

// SitesFile is the structure of the YAML site list.
type SitesFile struct {
	Sites []SiteEntry `yaml:"sites"`
}

// LoadSitesFile reads the YAML site list and returns the deduplicated
// corpus. A domain listed more than once keeps the identity fields of its
// first entry and accumulates the union of all its tags, preserving
// first-seen tag order. Entries with an empty domain are skipped.
func LoadSitesFile(path string) ([]model.Site, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided sites path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSitesFileNotFound, path)
		}
		return nil, err
	}

	var sf SitesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse site list %s: %w", path, err)
	}

	sites := make([]model.Site, 0, len(sf.Sites))
	index := make(map[string]int) // domain -> position in sites
	seenTags := make(map[string]map[string]bool)

	for _, entry := range sf.Sites {
		if entry.Domain == "" {
			continue
		}

		pos, seen := index[entry.Domain]
		if !seen {
			site := model.Site{
				ID:      entry.ID,
				Name:    entry.Name,
				Slug:    entry.Slug,
				Domain:  entry.Domain,
				Account: entry.Account,
				Tags:    []string{},
			}
			if site.ID == "" {
				site.ID = site.Slug
			}
			if site.ID == "" {
				site.ID = site.Domain
			}
			if site.Name == "" {
				site.Name = site.Domain
			}
			pos = len(sites)
			sites = append(sites, site)
			index[entry.Domain] = pos
			seenTags[entry.Domain] = make(map[string]bool)
		}

		for _, tag := range entry.Tags {
			if tag == "" || seenTags[entry.Domain][tag] {
				continue
			}
			seenTags[entry.Domain][tag] = true
			sites[pos].Tags = append(sites[pos].Tags, tag)
		}
	}

	return sites, nil
}
