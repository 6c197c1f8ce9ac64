package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/safety"
	"github.com/contentpilot/cps/internal/sources"
	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "research"})

// Option adjusts an Orchestrator.
type Option func(*Orchestrator)

// WithInvokeOptions forwards retry options to every service invocation.
func WithInvokeOptions(options ...sources.InvokeOption) Option {
	return func(o *Orchestrator) {
		o.invokeOptions = options
	}
}

// Orchestrator walks the configured research sources in priority order and falls
// back to the cached example bundle when no live source can serve the topic.
type Orchestrator struct {
	priority      []string
	clients       map[string]sources.Client
	quotas        *ledger.Ledger
	checker       *safety.Checker
	bundle        *Bundle
	invokeOptions []sources.InvokeOption
}

// New creates an Orchestrator. The priority list names entries of clients; names
// without a registered client are ignored during the walk.
func New(
	priority []string,
	clients map[string]sources.Client,
	quotas *ledger.Ledger,
	checker *safety.Checker,
	bundle *Bundle,
	options ...Option,
) *Orchestrator {
	orchestrator := &Orchestrator{
		priority: priority,
		clients:  clients,
		quotas:   quotas,
		checker:  checker,
		bundle:   bundle,
	}
	for _, option := range options {
		option(orchestrator)
	}
	return orchestrator
}

// Research produces a record for the topic. The topic is screened before any
// external call is made; an unsafe topic returns a RejectionError without
// consuming quota. Research never fails for safe topics because the cached
// bundle always has an answer.
func (o *Orchestrator) Research(ctx context.Context, topic string) (*Record, error) {
	log := log.WithFields(logrus.Fields{"context": "research", "topic": topic})

	if report := o.checker.Check(topic); !report.Safe {
		return nil, &safety.RejectionError{Report: report}
	}

	for _, name := range o.priority {
		client, ok := o.clients[name]
		if !ok || !client.Available() {
			continue
		}
		if !o.quotas.Eligible(ctx, name) {
			log.Debugf("daily ceiling reached for %s, skipping", name)
			continue
		}

		result, err := sources.Invoke(ctx, client, sources.Request{Topic: topic, Prompt: researchPrompt(topic)}, o.quotas, o.invokeOptions...)
		if err != nil {
			log.Warnf("research source %s failed: %s", name, err)
			continue
		}

		record := normalizeResult(topic, result)
		log.Debugf("served by %s with confidence %.1f", name, record.Confidence)
		return record, nil
	}

	log.Info("no live research source available, serving a cached example")
	record, _ := o.bundle.Lookup(topic)
	return record, nil
}

// CachedExample returns the bundle entry for the topic along with its prebuilt
// posts keyed by style.
func (o *Orchestrator) CachedExample(topic string) (*Record, map[string]string) {
	return o.bundle.Lookup(topic)
}

// normalizeResult converts a raw service result into a record. Generative
// services return text; list-style services return items. A result with neither
// is salvaged rather than trusted.
func normalizeResult(topic string, result *sources.Result) *Record {
	if len(result.Items) > 0 {
		return recordFromItems(topic, result.Items)
	}
	return parseGenerative(topic, result.Service, strings.TrimSpace(result.Text))
}

// researchPrompt asks a generative service for the structured payload the parser
// prefers. Services that ignore the instruction still get salvaged.
func researchPrompt(topic string) string {
	return fmt.Sprintf(`Research the topic %q and respond with a single JSON object containing:
- "summary": two to three sentences on the current state of the topic
- "key_insights": an array of three to five short findings
- "trending_reason": one sentence on why the topic is getting attention now
- "business_impact": one sentence on what it means for businesses
Respond with only the JSON object.`, topic)
}
