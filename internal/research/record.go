// Package research turns a topic into a normalized research record, walking the
// configured sources in priority order and falling back to cached examples.
package research

// Provenance values for research records.
const (
	ProvenanceLive   = "live"
	ProvenanceCached = "cached"
)

// Source is one citation attached to a research record.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Record is the normalized result of researching one topic. Every path through
// the package produces one of these, so callers never see raw service output.
type Record struct {
	Topic          string   `json:"topic"`
	Summary        string   `json:"summary"`
	KeyInsights    []string `json:"key_insights"`
	Sources        []Source `json:"sources"`
	TrendingReason string   `json:"trending_reason,omitempty"`
	BusinessImpact string   `json:"business_impact,omitempty"`
	Confidence     float64  `json:"confidence"`
	Provenance     string   `json:"provenance"`
	Service        string   `json:"service,omitempty"`
}
