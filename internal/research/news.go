package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/contentpilot/cps/internal/sources"
	"github.com/contentpilot/cps/utils"
)

// newsName is the service name the aggregate reports to the quota ledger.
const newsName = "news"

// Aggregation limits.
const (
	maxCitations    = 5
	maxNewsInsights = 5
	trendingTTL     = time.Hour
	frontPageHits   = 20
	trendingLimit   = 10
)

// News aggregates the feed, forum, and social adapters into one research source.
// The sub-adapters are invoked directly so the ledger charges a single attempt
// against the shared news ceiling.
type News struct {
	feeds  *sources.NewsFeeds
	forum  *sources.HackerNews
	social *sources.Reddit

	trendMu      sync.Mutex
	trendCache   []TrendingTopic
	trendFetched time.Time
	now          func() time.Time
}

// NewNews creates the aggregate. The social adapter may be nil.
func NewNews(feeds *sources.NewsFeeds, forum *sources.HackerNews, social *sources.Reddit) *News {
	return &News{feeds: feeds, forum: forum, social: social, now: time.Now}
}

func (n *News) Name() string {
	return newsName
}

func (n *News) Available() bool {
	if n.feeds != nil && n.feeds.Available() {
		return true
	}
	if n.forum != nil && n.forum.Available() {
		return true
	}
	return n.social != nil && n.social.Available()
}

// Invoke gathers items from every configured sub-adapter, keeps the ones
// relevant to the topic, and orders them by relevance. Sub-adapters fail
// independently; the invocation only fails when nothing relevant was found.
func (n *News) Invoke(ctx context.Context, req sources.Request) (*sources.Result, error) {
	var gathered []sources.Item
	var lastErr error

	for _, client := range n.subClients() {
		result, err := client.Invoke(ctx, req)
		if err != nil {
			lastErr = err
			log.Debugf("news sub-source %s failed: %s", client.Name(), err)
			continue
		}
		gathered = append(gathered, result.Items...)
	}

	topicWords := utils.TopicWords(req.Topic)
	type ranked struct {
		item      sources.Item
		relevance float64
	}
	kept := make([]ranked, 0, len(gathered))
	for _, item := range gathered {
		relevance := titleRelevance(topicWords, item.Title)
		if relevance > 0 {
			kept = append(kept, ranked{item: item, relevance: relevance})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].relevance > kept[j].relevance })

	if len(kept) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, &sources.Failure{
			Service: newsName,
			Kind:    sources.FailurePermanent,
			Err:     errors.Errorf("no recent coverage found for %q", req.Topic),
		}
	}

	items := make([]sources.Item, len(kept))
	for i, r := range kept {
		items[i] = r.item
	}
	return &sources.Result{Service: newsName, Items: items}, nil
}

func (n *News) subClients() []sources.Client {
	var clients []sources.Client
	if n.feeds != nil && n.feeds.Available() {
		clients = append(clients, n.feeds)
	}
	if n.forum != nil && n.forum.Available() {
		clients = append(clients, n.forum)
	}
	if n.social != nil && n.social.Available() {
		clients = append(clients, n.social)
	}
	return clients
}

// titleRelevance is the fraction of topic words present in the title.
func titleRelevance(topicWords []string, title string) float64 {
	if len(topicWords) == 0 {
		return 0
	}
	lowered := strings.ToLower(title)
	matched := 0
	for _, word := range topicWords {
		if strings.Contains(lowered, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(topicWords))
}

// recordFromItems normalizes aggregated news items into a research record. The
// confidence score rewards breadth: distinct outlets first, then volume of
// articles and discussions, capped at 10.
func recordFromItems(topic string, items []sources.Item) *Record {
	outlets := make(map[string]struct{})
	articles := 0
	discussions := 0
	for _, item := range items {
		outlets[item.Source] = struct{}{}
		switch item.Kind {
		case sources.KindDiscussion:
			discussions++
		default:
			articles++
		}
	}

	confidence := minFloat(2.0*float64(len(outlets)), 6.0) +
		minFloat(0.5*float64(articles), 2.0) +
		minFloat(0.3*float64(discussions), 2.0)
	if confidence > 10 {
		confidence = 10
	}

	insights := make([]string, 0, maxNewsInsights)
	citations := make([]Source, 0, maxCitations)
	for _, item := range items {
		if len(insights) < maxNewsInsights {
			insights = append(insights, fmt.Sprintf("%s (%s)", item.Title, item.Source))
		}
		if len(citations) < maxCitations {
			citations = append(citations, Source{Name: item.Source, URL: item.URL})
		}
	}

	summary := fmt.Sprintf("Recent coverage of %s spans %d articles and %d community discussions across %d sources. Leading story: %s.",
		topic, articles, discussions, len(outlets), items[0].Title)

	return &Record{
		Topic:          topic,
		Summary:        summary,
		KeyInsights:    insights,
		Sources:        citations,
		TrendingReason: fmt.Sprintf("Mentioned in %d recent articles and %d community discussions", articles, discussions),
		Confidence:     confidence,
		Provenance:     ProvenanceLive,
		Service:        newsName,
	}
}

// TrendingTopic is one mined topic with its accumulated points and momentum.
type TrendingTopic struct {
	Topic    string  `json:"topic"`
	Score    int     `json:"score"`
	Momentum float64 `json:"momentum"`
}

// Trending mines candidate topics from the forum front page, weighting words by
// story points. Results are cached for an hour to spare the upstream API.
func (n *News) Trending(ctx context.Context) ([]TrendingTopic, error) {
	wrapMsg := "unable to determine trending topics"

	n.trendMu.Lock()
	defer n.trendMu.Unlock()

	if n.trendCache != nil && n.now().Sub(n.trendFetched) < trendingTTL {
		return n.trendCache, nil
	}
	if n.forum == nil {
		return nil, errors.Wrap(errors.New("no forum source configured"), wrapMsg)
	}

	items, err := n.forum.FrontPage(ctx, frontPageHits)
	if err != nil {
		// Keep serving stale results if the refresh fails.
		if n.trendCache != nil {
			return n.trendCache, nil
		}
		return nil, errors.Wrap(err, wrapMsg)
	}

	weights := make(map[string]int)
	for _, item := range items {
		points := item.Score
		if points < 1 {
			points = 1
		}
		for _, word := range strings.Fields(strings.ToLower(item.Title)) {
			word = strings.Trim(word, ".,:;!?\"'()[]")
			if len(word) <= 4 || !isAlphabetic(word) {
				continue
			}
			weights[word] += points
		}
	}

	topics := make([]TrendingTopic, 0, len(weights))
	for word, weight := range weights {
		topics = append(topics, TrendingTopic{
			Topic:    word,
			Score:    weight,
			Momentum: minFloat(float64(weight)/100.0, 1.0),
		})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Score != topics[j].Score {
			return topics[i].Score > topics[j].Score
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > trendingLimit {
		topics = topics[:trendingLimit]
	}

	n.trendCache = topics
	n.trendFetched = n.now()
	return topics, nil
}

// InvalidateTrending drops the cached trending topics so that the next call to
// Trending fetches fresh ones.
func (n *News) InvalidateTrending() {
	n.trendMu.Lock()
	defer n.trendMu.Unlock()
	n.trendCache = nil
	n.trendFetched = time.Time{}
}

func isAlphabetic(word string) bool {
	for _, r := range word {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
