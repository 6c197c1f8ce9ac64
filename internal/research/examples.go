package research

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/contentpilot/cps/utils"
)

//go:embed examples.json
var examplesJSON []byte

// defaultKey is the bundle entry used when a topic has no cached example.
const defaultKey = "default"

type bundleEntry struct {
	Summary        string            `json:"summary"`
	KeyInsights    []string          `json:"key_insights"`
	Sources        []Source          `json:"sources"`
	TrendingReason string            `json:"trending_reason,omitempty"`
	BusinessImpact string            `json:"business_impact,omitempty"`
	Confidence     float64           `json:"confidence"`
	Posts          map[string]string `json:"posts,omitempty"`
}

// Bundle is the static cached-example set compiled into the binary. It is the
// research result of last resort, so lookups always succeed.
type Bundle struct {
	entries map[string]bundleEntry
}

// LoadBundle parses the embedded example set.
func LoadBundle() (*Bundle, error) {
	wrapMsg := "unable to load the cached examples"

	var entries map[string]bundleEntry
	if err := json.Unmarshal(examplesJSON, &entries); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if _, ok := entries[defaultKey]; !ok {
		return nil, errors.Wrap(errors.New("no default entry present"), wrapMsg)
	}
	return &Bundle{entries: entries}, nil
}

// Topics lists the topics with dedicated cached examples.
func (b *Bundle) Topics() []string {
	topics := make([]string, 0, len(b.entries))
	for key := range b.entries {
		if key != defaultKey {
			topics = append(topics, key)
		}
	}
	return topics
}

// Lookup returns the cached record for the topic along with any prebuilt posts
// keyed by style. Topics match case-insensitively with surrounding whitespace
// ignored; unknown topics get the default entry.
func (b *Bundle) Lookup(topic string) (*Record, map[string]string) {
	entry, ok := b.entries[utils.NormalizeTopicKey(topic)]
	if !ok {
		entry = b.entries[defaultKey]
	}

	record := &Record{
		Topic:          topic,
		Summary:        entry.Summary,
		KeyInsights:    entry.KeyInsights,
		Sources:        entry.Sources,
		TrendingReason: entry.TrendingReason,
		BusinessImpact: entry.BusinessImpact,
		Confidence:     entry.Confidence,
		Provenance:     ProvenanceCached,
	}
	return record, entry.Posts
}
