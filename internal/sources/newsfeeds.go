package sources

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
)

const newsFeedsName = "newsfeeds"

// feedEntryLimit caps how many entries one feed contributes per invocation.
const feedEntryLimit = 5

var htmlTagRegexp = regexp.MustCompile(`<[^>]*>`)

// NewsFeeds reads the configured RSS and Atom feeds. Feeds that fail to parse
// are skipped so one dead feed can't take the whole source down.
type NewsFeeds struct {
	urls   []string
	parser *gofeed.Parser
}

// NewNewsFeeds creates the adapter for the given feed URLs.
func NewNewsFeeds(urls []string, timeout time.Duration) *NewsFeeds {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &NewsFeeds{urls: urls, parser: parser}
}

func (n *NewsFeeds) Name() string {
	return newsFeedsName
}

func (n *NewsFeeds) Available() bool {
	return len(n.urls) > 0
}

func (n *NewsFeeds) Invoke(ctx context.Context, req Request) (*Result, error) {
	var items []Item
	var lastErr error

	for _, feedURL := range n.urls {
		feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = err
			log.Debugf("skipping feed %s: %s", feedURL, err)
			continue
		}

		for i, entry := range feed.Items {
			if i >= feedEntryLimit {
				break
			}
			item := Item{
				Title:   entry.Title,
				URL:     entry.Link,
				Snippet: cleanSnippet(entry.Description),
				Source:  feed.Title,
				Kind:    KindArticle,
			}
			if entry.PublishedParsed != nil {
				item.PublishedAt = *entry.PublishedParsed
			}
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		if lastErr != nil {
			return nil, transient(newsFeedsName, lastErr)
		}
		return nil, permanent(newsFeedsName, errors.New("no feed entries available"))
	}
	return &Result{Service: newsFeedsName, Items: items}, nil
}

// cleanSnippet strips markup from a feed description and bounds its length.
func cleanSnippet(description string) string {
	text := strings.TrimSpace(htmlTagRegexp.ReplaceAllString(description, " "))
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 300 {
		text = text[:300]
	}
	return text
}
