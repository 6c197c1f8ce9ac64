// Package content turns research records into scored post drafts.
package content

import (
	"regexp"
	"strings"

	"github.com/contentpilot/cps/internal/research"
)

// Generator values recorded on a variation.
const (
	GeneratorTemplate = "template"
	GeneratorCached   = "cached"
)

// Variation is one scored draft of generated post text.
type Variation struct {
	Style     string            `json:"style"`
	Text      string            `json:"text"`
	WordCount int               `json:"word_count"`
	Hashtags  []string          `json:"hashtags"`
	Score     float64           `json:"quality_score"`
	Generator string            `json:"generator,omitempty"`
	Sources   []research.Source `json:"sources,omitempty"`
}

var hashtagRegexp = regexp.MustCompile(`#\w+`)

// ExtractHashtags returns the hashtags present in the text, in order of
// appearance.
func ExtractHashtags(text string) []string {
	return hashtagRegexp.FindAllString(text, -1)
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
