package model

import "sort"

// IssueDefinition is the descriptive metadata for one diagnostic issue.
// It is registered once, on first observation across the corpus; later
// observations of the same ID never overwrite it.
type IssueDefinition struct {
	// ID is the stable audit identifier.
	ID string `json:"id"`

	// Title is the short human-readable title.
	Title string `json:"title"`

	// Description explains the finding and its remediation.
	Description string `json:"description"`

	// Category is the audit category the issue belongs to, e.g.
	// "performance" or "seo". "unknown" when the payload does not say.
	Category string `json:"category"`
}

// IssueRegistry collects issue definitions with first-seen-wins semantics.
//
// The registry is built during the extraction pass and passed forward
// explicitly to classification; it is not hidden global state. It is not
// safe for concurrent writes: parallel extraction workers each build a
// local registry and the results are merged single-threaded via Merge.
type IssueRegistry struct {
	defs map[string]IssueDefinition
}

// NewIssueRegistry creates an empty registry.
func NewIssueRegistry() *IssueRegistry {
	return &IssueRegistry{defs: make(map[string]IssueDefinition)}
}

// Register adds a definition if its ID is unseen. It returns true when the
// definition was added, false when an earlier registration won.
func (r *IssueRegistry) Register(def IssueDefinition) bool {
	if _, ok := r.defs[def.ID]; ok {
		return false
	}
	r.defs[def.ID] = def
	return true
}

// Get returns the definition for the given ID.
func (r *IssueRegistry) Get(id string) (IssueDefinition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// Merge folds another registry into this one, preserving first-seen-wins:
// definitions already present are kept, new IDs are adopted. Registration
// is commutative with respect to the set of known IDs, so merge order only
// matters when two workers saw the same ID with different metadata; the
// receiver wins, matching sequential first-seen order.
func (r *IssueRegistry) Merge(other *IssueRegistry) {
	if other == nil {
		return
	}
	for _, def := range other.defs {
		r.Register(def)
	}
}

// Len returns the number of registered definitions.
func (r *IssueRegistry) Len() int {
	return len(r.defs)
}

// IDs returns all registered IDs in ascending order.
func (r *IssueRegistry) IDs() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Bucket is the frequency classification of an issue across a scope of sites.
type Bucket int

const (
	// BucketOccasional holds issues present on fewer than 30% of sites.
	BucketOccasional Bucket = iota

	// BucketFrequent holds issues present on 30% to 70% of sites inclusive.
	BucketFrequent

	// BucketCritical holds issues present on more than 70% of sites.
	BucketCritical
)

// String returns the bucket name as used in report JSON keys.
func (b Bucket) String() string {
	switch b {
	case BucketOccasional:
		return "occasional"
	case BucketFrequent:
		return "frequent"
	case BucketCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ClassifiedIssue is an issue definition together with its frequency across
// the classified scope. Count and Percentage are always relative to the
// scope they were computed over; a filtered view recomputes both.
type ClassifiedIssue struct {
	IssueDefinition

	// Count is the number of non-error sites in scope containing the issue.
	Count int `json:"count"`

	// Percentage is Count over the scope's non-error site total, rounded
	// to one decimal place.
	Percentage float64 `json:"percentage"`

	// Tags lists the tags of the sites where the issue appears, sorted.
	Tags []string `json:"tags,omitempty"`
}
