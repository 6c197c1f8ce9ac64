package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/research"
	"github.com/contentpilot/cps/internal/safety"
	"github.com/contentpilot/cps/internal/sources"
	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "content"})

// maxStyles caps how many variations one request produces.
const maxStyles = 3

// Option adjusts an Orchestrator.
type Option func(*Orchestrator)

// WithInvokeOptions forwards retry options to every service invocation.
func WithInvokeOptions(options ...sources.InvokeOption) Option {
	return func(o *Orchestrator) {
		o.invokeOptions = options
	}
}

// Orchestrator produces scored draft variations from a research record. A live
// generation service produces a single draft; otherwise the deterministic
// templates produce one draft per requested style.
type Orchestrator struct {
	priority      []string
	clients       map[string]sources.Client
	quotas        *ledger.Ledger
	checker       *safety.Checker
	scorer        *Scorer
	invokeOptions []sources.InvokeOption
}

// New creates an Orchestrator. The priority list should contain only generative
// services.
func New(
	priority []string,
	clients map[string]sources.Client,
	quotas *ledger.Ledger,
	checker *safety.Checker,
	scorer *Scorer,
	options ...Option,
) *Orchestrator {
	orchestrator := &Orchestrator{
		priority: priority,
		clients:  clients,
		quotas:   quotas,
		checker:  checker,
		scorer:   scorer,
	}
	for _, option := range options {
		option(orchestrator)
	}
	return orchestrator
}

// Scorer returns the scorer the orchestrator applies to drafts.
func (o *Orchestrator) Scorer() *Scorer {
	return o.scorer
}

// Generate produces scored variations for the topic. cachedPosts, keyed by
// style, supplies prebuilt drafts to prefer over templates when no live service
// serves the request. Drafts that fail the safety check are dropped; the
// survivors carry their sanitized text.
func (o *Orchestrator) Generate(ctx context.Context, topic string, record *research.Record, styles []string, cachedPosts map[string]string) []Variation {
	log := log.WithFields(logrus.Fields{"context": "generate", "topic": topic})

	if len(styles) == 0 {
		styles = DefaultStyles
	}
	if len(styles) > maxStyles {
		styles = styles[:maxStyles]
	}

	var candidates []Variation
	if variation, ok := o.generateLive(ctx, topic, record, styles[0]); ok {
		candidates = append(candidates, variation)
	} else {
		insight := ""
		if len(record.KeyInsights) > 0 {
			insight = record.KeyInsights[0]
		}
		for _, style := range styles {
			if post, ok := cachedPosts[style]; ok && post != "" {
				candidates = append(candidates, Variation{Style: style, Text: post, Generator: GeneratorCached})
				continue
			}
			candidates = append(candidates, Variation{Style: style, Text: renderTemplate(style, topic, insight), Generator: GeneratorTemplate})
		}
	}

	variations := make([]Variation, 0, len(candidates))
	for _, variation := range candidates {
		report := o.checker.Check(variation.Text)
		if !report.Safe {
			log.Warnf("dropping an unsafe %s draft: %s", variation.Style, strings.Join(report.Issues, "; "))
			continue
		}
		variation.Text = report.SanitizedText
		variation.WordCount = wordCount(variation.Text)
		variation.Hashtags = ExtractHashtags(variation.Text)
		variation.Score = o.scorer.Score(variation.Text, variation.Style)
		variation.Sources = record.Sources
		variations = append(variations, variation)
	}
	return variations
}

// generateLive walks the generative services in priority order and returns the
// first successful draft.
func (o *Orchestrator) generateLive(ctx context.Context, topic string, record *research.Record, style string) (Variation, bool) {
	log := log.WithFields(logrus.Fields{"context": "generate", "topic": topic})

	for _, name := range o.priority {
		client, ok := o.clients[name]
		if !ok || !client.Available() {
			continue
		}
		if !o.quotas.Eligible(ctx, name) {
			log.Debugf("daily ceiling reached for %s, skipping", name)
			continue
		}

		request := sources.Request{Topic: topic, Prompt: o.contentPrompt(topic, record, style)}
		result, err := sources.Invoke(ctx, client, request, o.quotas, o.invokeOptions...)
		if err != nil {
			log.Warnf("generation source %s failed: %s", name, err)
			continue
		}
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		return Variation{Style: style, Text: text, Generator: result.Service}, true
	}
	return Variation{}, false
}

var styleDescriptors = map[string]string{
	StyleProfessional:      "polished, professional",
	StyleThoughtLeadership: "bold thought-leadership",
	StyleConversational:    "friendly, conversational",
}

// contentPrompt builds the generation prompt from the research record, passing
// along at most three insights.
func (o *Orchestrator) contentPrompt(topic string, record *research.Record, style string) string {
	descriptor, ok := styleDescriptors[style]
	if !ok {
		descriptor = style
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s social media post about %q.\n", descriptor, topic)
	if record.Summary != "" {
		fmt.Fprintf(&b, "Context: %s\n", record.Summary)
	}
	insights := record.KeyInsights
	if len(insights) > 3 {
		insights = insights[:3]
	}
	if len(insights) > 0 {
		b.WriteString("Key points to draw on:\n")
		for _, insight := range insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}
	targetRange := o.scorer.TargetRange(style)
	fmt.Fprintf(&b, "Aim for %d to %d words and include 2 to 5 hashtags. Return only the post text.", targetRange.Min, targetRange.Max)
	return b.String()
}
