package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const hackerNewsName = "hackernews"

// hackerNewsSourceLabel is the display name attached to returned items.
const hackerNewsSourceLabel = "Hacker News"

const defaultStoryLimit = 5

// HackerNews searches story discussions through the Algolia search API. The API
// needs no credentials, so the adapter is always available.
type HackerNews struct {
	baseURL string
	client  *http.Client
}

// NewHackerNews creates the adapter.
func NewHackerNews(baseURL string, timeout time.Duration) *HackerNews {
	return &HackerNews{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HackerNews) Name() string {
	return hackerNewsName
}

func (h *HackerNews) Available() bool {
	return true
}

type hackerNewsHit struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Points      int       `json:"points"`
	NumComments int       `json:"num_comments"`
	ObjectID    string    `json:"objectID"`
	CreatedAt   time.Time `json:"created_at"`
}

type hackerNewsResponse struct {
	Hits []hackerNewsHit `json:"hits"`
}

func (h *HackerNews) Invoke(ctx context.Context, req Request) (*Result, error) {
	limit := req.MaxItems
	if limit <= 0 {
		limit = defaultStoryLimit
	}

	hits, err := h.search(ctx, fmt.Sprintf("query=%s&tags=story&hitsPerPage=%d", url.QueryEscape(req.Topic), limit))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(hits))
	for _, hit := range hits {
		items = append(items, hitToItem(hit))
	}
	return &Result{Service: hackerNewsName, Items: items}, nil
}

// FrontPage returns the current front-page stories. The trending miner uses this
// to gauge what the community is discussing right now.
func (h *HackerNews) FrontPage(ctx context.Context, limit int) ([]Item, error) {
	hits, err := h.search(ctx, fmt.Sprintf("tags=front_page&hitsPerPage=%d", limit))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(hits))
	for _, hit := range hits {
		items = append(items, hitToItem(hit))
	}
	return items, nil
}

func (h *HackerNews) search(ctx context.Context, query string) ([]hackerNewsHit, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/search?%s", h.baseURL, query), nil)
	if err != nil {
		return nil, permanent(hackerNewsName, err)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, transient(hackerNewsName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPStatus(hackerNewsName, resp.StatusCode, readBody(resp.Body))
	}

	var parsed hackerNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, permanent(hackerNewsName, errors.Wrap(err, "unable to decode the response"))
	}
	return parsed.Hits, nil
}

func hitToItem(hit hackerNewsHit) Item {
	link := hit.URL
	if link == "" {
		link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
	}
	return Item{
		Title:       hit.Title,
		URL:         link,
		Source:      hackerNewsSourceLabel,
		Kind:        KindDiscussion,
		Score:       hit.Points,
		Comments:    hit.NumComments,
		PublishedAt: hit.CreatedAt,
	}
}
