package utils

import (
	"regexp"
	"strings"
)

// innerWhitespaceRegexp matches runs of whitespace inside a topic string.
var innerWhitespaceRegexp = regexp.MustCompile(`\s+`)

// NormalizeTopicKey lowercases a topic, trims it, and collapses interior whitespace.
// Cached-example lookups and telemetry aggregation both key on the normalized form so
// that trivially different spellings of the same topic share one entry.
func NormalizeTopicKey(topic string) string {
	return innerWhitespaceRegexp.ReplaceAllString(strings.TrimSpace(strings.ToLower(topic)), " ")
}

// TopicWords splits a topic into its normalized words for relevance matching.
func TopicWords(topic string) []string {
	normalized := NormalizeTopicKey(topic)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}
