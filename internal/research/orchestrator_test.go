package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/safety"
	"github.com/contentpilot/cps/internal/sources"
)

// fakeClient is a scriptable research source.
type fakeClient struct {
	name      string
	available bool
	calls     int
	text      string
	err       error
}

func (c *fakeClient) Name() string {
	return c.name
}

func (c *fakeClient) Available() bool {
	return c.available
}

func (c *fakeClient) Invoke(ctx context.Context, req sources.Request) (*sources.Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &sources.Result{Service: c.name, Text: c.text}, nil
}

func newOrchestrator(t *testing.T, priority []string, clients map[string]sources.Client, quotas *ledger.Ledger) *Orchestrator {
	t.Helper()
	bundle, err := LoadBundle()
	require.NoError(t, err)
	if quotas == nil {
		quotas = ledger.New(ledger.NewMemoryStore(), nil)
	}
	return New(priority, clients, quotas, safety.New(2000, nil), bundle,
		WithInvokeOptions(sources.WithInitialBackoff(time.Millisecond)))
}

func TestUnsafeTopicIsRejectedBeforeAnyCall(t *testing.T) {
	client := &fakeClient{name: "anthropic", available: true, text: "should not be used"}
	orchestrator := newOrchestrator(t, []string{"anthropic"}, map[string]sources.Client{"anthropic": client}, nil)

	_, err := orchestrator.Research(context.Background(), "glorifying violence online")

	require.Error(t, err)
	var rejection *safety.RejectionError
	require.True(t, errors.As(err, &rejection))
	assert.False(t, rejection.Report.Safe)
	assert.Zero(t, client.calls, "no external call may happen for an unsafe topic")
}

func TestPriorityOrderIsRespected(t *testing.T) {
	first := &fakeClient{name: "anthropic", available: true, text: "from anthropic"}
	second := &fakeClient{name: "gemini", available: true, text: "from gemini"}
	orchestrator := newOrchestrator(t, []string{"anthropic", "gemini"},
		map[string]sources.Client{"anthropic": first, "gemini": second}, nil)

	record, err := orchestrator.Research(context.Background(), "edge computing")

	require.NoError(t, err)
	assert.Equal(t, "anthropic", record.Service)
	assert.Equal(t, ProvenanceLive, record.Provenance)
	assert.Zero(t, second.calls)
}

func TestUnavailableAndExhaustedServicesAreSkipped(t *testing.T) {
	unconfigured := &fakeClient{name: "anthropic", available: false}
	exhausted := &fakeClient{name: "gemini", available: true, text: "from gemini"}
	serving := &fakeClient{name: "huggingface", available: true, text: "from huggingface"}

	quotas := ledger.New(ledger.NewMemoryStore(), map[string]int{"gemini": 1})
	quotas.RecordAttempt(context.Background(), "gemini", true, "")

	orchestrator := newOrchestrator(t, []string{"anthropic", "gemini", "huggingface"},
		map[string]sources.Client{"anthropic": unconfigured, "gemini": exhausted, "huggingface": serving}, quotas)

	record, err := orchestrator.Research(context.Background(), "edge computing")

	require.NoError(t, err)
	assert.Equal(t, "huggingface", record.Service)
	assert.Zero(t, unconfigured.calls)
	assert.Zero(t, exhausted.calls, "an exhausted service must not be invoked")
}

func TestFailingSourceFallsThroughToCachedExamples(t *testing.T) {
	failing := &fakeClient{
		name:      "anthropic",
		available: true,
		err:       &sources.Failure{Service: "anthropic", Kind: sources.FailureTransient, Err: errors.New("down")},
	}
	orchestrator := newOrchestrator(t, []string{"anthropic"}, map[string]sources.Client{"anthropic": failing}, nil)

	record, err := orchestrator.Research(context.Background(), "fintech")

	require.NoError(t, err)
	assert.Equal(t, ProvenanceCached, record.Provenance)
	assert.Equal(t, 3, failing.calls, "transient failures are retried before giving up")
}

func TestCachedFallbackServesKnownTopics(t *testing.T) {
	orchestrator := newOrchestrator(t, nil, nil, nil)

	record, err := orchestrator.Research(context.Background(), "fintech")

	require.NoError(t, err)
	assert.Equal(t, ProvenanceCached, record.Provenance)
	assert.Equal(t, "fintech", record.Topic)
	assert.Contains(t, record.Summary, "Fintech")
	assert.NotEmpty(t, record.KeyInsights)
	assert.NotEmpty(t, record.Sources)
}

func TestCachedLookupIsCaseAndSpaceInsensitive(t *testing.T) {
	orchestrator := newOrchestrator(t, nil, nil, nil)

	exact, err := orchestrator.Research(context.Background(), "fintech")
	require.NoError(t, err)
	sloppy, err := orchestrator.Research(context.Background(), "  FinTech ")
	require.NoError(t, err)

	assert.Equal(t, exact.Summary, sloppy.Summary)
	assert.Equal(t, "  FinTech ", sloppy.Topic, "the requested topic is preserved verbatim")
}

func TestUnknownTopicsGetTheDefaultExample(t *testing.T) {
	orchestrator := newOrchestrator(t, nil, nil, nil)

	record, err := orchestrator.Research(context.Background(), "underwater basket weaving")

	require.NoError(t, err)
	assert.Equal(t, ProvenanceCached, record.Provenance)
	assert.Equal(t, "underwater basket weaving", record.Topic)
	assert.NotEmpty(t, record.Summary)
	assert.NotEmpty(t, record.KeyInsights)
}

func TestCachedExamplePosts(t *testing.T) {
	orchestrator := newOrchestrator(t, nil, nil, nil)

	_, posts := orchestrator.CachedExample("fintech")

	require.NotEmpty(t, posts)
	assert.Contains(t, posts, "professional")
}

func TestParseGenerativeStructuredPayload(t *testing.T) {
	raw := "Here is the research you asked for:\n```json\n" +
		`{"summary":"Edge computing moves workloads closer to users.",` +
		`"key_insights":["Latency budgets drive adoption","Retail leads deployments","Tooling is maturing"],` +
		`"trending_reason":"New platform launches this quarter.",` +
		`"business_impact":"Lower latency unlocks new product categories."}` +
		"\n```\nLet me know if you need more."

	record := parseGenerative("edge computing", "anthropic", raw)

	assert.Equal(t, "Edge computing moves workloads closer to users.", record.Summary)
	assert.Len(t, record.KeyInsights, 3)
	assert.Equal(t, "New platform launches this quarter.", record.TrendingReason)
	assert.Equal(t, ProvenanceLive, record.Provenance)
	assert.InDelta(t, 7.5, record.Confidence, 0.001)
	require.Len(t, record.Sources, 1)
	assert.Equal(t, "Anthropic Claude", record.Sources[0].Name)
}

func TestParseGenerativeSalvagesPlainText(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "edge computing keeps growing "
	}

	record := parseGenerative("edge computing", "gemini", long)

	assert.LessOrEqual(t, len([]rune(record.Summary)), 200)
	assert.Len(t, record.KeyInsights, 3)
	assert.InDelta(t, 5.0, record.Confidence, 0.001)
	assert.Equal(t, ProvenanceLive, record.Provenance)
}

func TestParseGenerativeSalvagesBrokenJSON(t *testing.T) {
	record := parseGenerative("edge computing", "gemini", `{"summary": "unterminated`)

	assert.NotEmpty(t, record.Summary)
	assert.Len(t, record.KeyInsights, 3)
}

func TestRecordFromItemsConfidence(t *testing.T) {
	items := []sources.Item{
		{Title: "Edge nodes hit retail", Source: "TechCrunch", Kind: sources.KindArticle, URL: "https://example.com/1"},
		{Title: "Edge computing budgets grow", Source: "Wired", Kind: sources.KindArticle, URL: "https://example.com/2"},
		{Title: "Ask HN: edge deployments", Source: "Hacker News", Kind: sources.KindDiscussion},
		{Title: "Edge benchmarks", Source: "Hacker News", Kind: sources.KindDiscussion},
	}

	record := recordFromItems("edge computing", items)

	// 3 outlets -> 6.0, 2 articles -> 1.0, 2 discussions -> 0.6.
	assert.InDelta(t, 7.6, record.Confidence, 0.001)
	assert.Contains(t, record.Summary, "edge computing")
	assert.LessOrEqual(t, len(record.Sources), 5)
	assert.Equal(t, "news", record.Service)
}

func TestConfidenceIsCappedAtTen(t *testing.T) {
	var items []sources.Item
	for i := 0; i < 30; i++ {
		items = append(items, sources.Item{Title: "story", Source: string(rune('a' + i)), Kind: sources.KindArticle})
	}

	record := recordFromItems("anything", items)
	assert.LessOrEqual(t, record.Confidence, 10.0)
}

func TestTitleRelevance(t *testing.T) {
	words := []string{"edge", "computing"}

	assert.InDelta(t, 1.0, titleRelevance(words, "Edge Computing in 2025"), 0.001)
	assert.InDelta(t, 0.5, titleRelevance(words, "Computing budgets under pressure"), 0.001)
	assert.Zero(t, titleRelevance(words, "Fusion power milestone"))
}

func TestTrendingMinesFrontPageWords(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "front_page", r.URL.Query().Get("tags"))
		w.Write([]byte(`{"hits":[
			{"title":"Postgres performance tuning guide","points":150,"num_comments":40,"objectID":"1"},
			{"title":"Kubernetes operators explained","points":90,"num_comments":12,"objectID":"2"},
			{"title":"Go is fast now","points":400,"num_comments":80,"objectID":"3"}
		]}`))
	}))
	defer server.Close()

	news := NewNews(nil, sources.NewHackerNews(server.URL, time.Second), nil)

	topics, err := news.Trending(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, topics)

	byName := make(map[string]TrendingTopic)
	for _, topic := range topics {
		byName[topic.Topic] = topic
	}

	require.Contains(t, byName, "postgres")
	assert.Equal(t, 150, byName["postgres"].Score)
	assert.InDelta(t, 1.0, byName["postgres"].Momentum, 0.001)
	require.Contains(t, byName, "kubernetes")
	assert.InDelta(t, 0.9, byName["kubernetes"].Momentum, 0.001)

	// Words of four letters or fewer never become topics, however hot the story.
	assert.NotContains(t, byName, "fast")

	// The second call is served from the cache.
	_, err = news.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestNewsInvokeFiltersByRelevance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hits":[
			{"title":"Robotics startups raise record rounds","points":10,"num_comments":3,"objectID":"1"},
			{"title":"Coffee prices climb again","points":50,"num_comments":9,"objectID":"2"}
		]}`))
	}))
	defer server.Close()

	news := NewNews(nil, sources.NewHackerNews(server.URL, time.Second), nil)

	result, err := news.Invoke(context.Background(), sources.Request{Topic: "robotics"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Robotics startups raise record rounds", result.Items[0].Title)
}
