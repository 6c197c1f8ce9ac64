package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/pkg/errors"
)

const redditName = "reddit"

// Per-subreddit and overall caps on returned discussions.
const (
	redditPerSubreddit = 2
	redditMaxItems     = 10
)

// Reddit reads public subreddit search listings. Reddit rejects requests without
// a descriptive User-Agent header, so the adapter is only available when one is
// configured.
type Reddit struct {
	baseURL    string
	userAgent  string
	subreddits []string
	client     *http.Client
}

// NewReddit creates the adapter.
func NewReddit(baseURL, userAgent string, subreddits []string, timeout time.Duration) *Reddit {
	return &Reddit{
		baseURL:    baseURL,
		userAgent:  userAgent,
		subreddits: subreddits,
		client:     &http.Client{Timeout: timeout},
	}
}

func (r *Reddit) Name() string {
	return redditName
}

func (r *Reddit) Available() bool {
	return r.userAgent != "" && len(r.subreddits) > 0
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (r *Reddit) Invoke(ctx context.Context, req Request) (*Result, error) {
	var items []Item
	var lastErr error

	for _, subreddit := range r.subreddits {
		posts, err := r.search(ctx, subreddit, req.Topic)
		if err != nil {
			lastErr = err
			log.Debugf("skipping r/%s: %s", subreddit, err)
			continue
		}
		for _, post := range posts {
			items = append(items, Item{
				Title:       post.Title,
				URL:         "https://www.reddit.com" + post.Permalink,
				Source:      "r/" + post.Subreddit,
				Kind:        KindDiscussion,
				Score:       post.Score,
				Comments:    post.NumComments,
				PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			})
		}
	}

	if len(items) == 0 {
		if lastErr != nil {
			return nil, transient(redditName, lastErr)
		}
		return nil, permanent(redditName, errors.New("no matching discussions found"))
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > redditMaxItems {
		items = items[:redditMaxItems]
	}
	return &Result{Service: redditName, Items: items}, nil
}

func (r *Reddit) search(ctx context.Context, subreddit, topic string) ([]redditPost, error) {
	searchURL := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&sort=relevance&limit=%d",
		r.baseURL, subreddit, url.QueryEscape(topic), redditPerSubreddit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, permanent(redditName, err)
	}
	httpReq.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, transient(redditName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPStatus(redditName, resp.StatusCode, readBody(resp.Body))
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, permanent(redditName, errors.Wrap(err, "unable to decode the listing"))
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}
