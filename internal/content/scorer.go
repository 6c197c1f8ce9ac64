package content

import (
	"strings"

	"github.com/contentpilot/cps/config"
)

// Scorer applies the heuristic quality function with configured weights. Scoring
// the same text twice always yields the same result.
type Scorer struct {
	spec config.ScoringSpec
}

// NewScorer creates a Scorer from the configured weights and style ranges.
func NewScorer(spec config.ScoringSpec) *Scorer {
	return &Scorer{spec: spec}
}

// Breakdown itemizes the score components for one draft.
type Breakdown struct {
	WordCount  float64 `json:"word_count"`
	Hashtags   float64 `json:"hashtags"`
	Question   float64 `json:"question"`
	Engagement float64 `json:"engagement"`
	Sentences  float64 `json:"sentences"`
	Restraint  float64 `json:"restraint"`
	Total      float64 `json:"total"`
}

// Score rates a draft from 0 to 10 for its style.
func (s *Scorer) Score(text, style string) float64 {
	return s.Breakdown(text, style).Total
}

// Breakdown rates a draft and reports each component. The word-count component
// pays its full weight inside the style's target range and decays linearly with
// the distance from the range's upper bound outside it. The remaining components
// are all-or-nothing.
func (s *Scorer) Breakdown(text, style string) Breakdown {
	var b Breakdown
	lowered := strings.ToLower(text)

	targetRange := s.TargetRange(style)
	words := wordCount(text)
	if words >= targetRange.Min && words <= targetRange.Max {
		b.WordCount = s.spec.WordCountWeight
	} else {
		distance := words - targetRange.Max
		if distance < 0 {
			distance = -distance
		}
		b.WordCount = s.spec.WordCountWeight - float64(distance)/50.0
		if b.WordCount < 0 {
			b.WordCount = 0
		}
	}

	if tags := len(ExtractHashtags(text)); tags >= 2 && tags <= 5 {
		b.Hashtags = s.spec.HashtagWeight
	}

	if strings.Contains(text, "?") {
		b.Question = s.spec.QuestionWeight
	}

	for _, cue := range s.spec.EngagementCues {
		if strings.Contains(lowered, cue) {
			b.Engagement = s.spec.EngagementWeight
			break
		}
	}

	if sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?"); sentences >= 3 && sentences <= 8 {
		b.Sentences = s.spec.SentenceWeight
	}

	hyperbolic := false
	for _, word := range s.spec.HyperboleWords {
		if strings.Contains(lowered, word) {
			hyperbolic = true
			break
		}
	}
	if !hyperbolic {
		b.Restraint = s.spec.RestraintWeight
	}

	b.Total = b.WordCount + b.Hashtags + b.Question + b.Engagement + b.Sentences + b.Restraint
	if b.Total > 10 {
		b.Total = 10
	}
	return b
}

// TargetRange returns the word-count range for a style, falling back to the
// default range for unknown styles.
func (s *Scorer) TargetRange(style string) config.StyleRange {
	if r, ok := s.spec.StyleRanges[style]; ok {
		return r
	}
	return s.spec.DefaultRange
}
