// Package sources contains the adapters for the external research and generation
// services, behind one uniform invocation contract.
package sources

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "sources"})

// Item kinds, used when weighing aggregated results.
const (
	KindArticle    = "article"
	KindDiscussion = "discussion"
)

// Request carries the inputs an adapter needs for one invocation.
type Request struct {

	// The topic being researched.
	Topic string

	// The prompt sent to generative services. List-style services ignore it.
	Prompt string

	// The maximum number of items a list-style service should return. Zero means
	// the adapter's default.
	MaxItems int
}

// Item is one entry returned by a list-style source.
type Item struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Snippet     string    `json:"snippet,omitempty"`
	Source      string    `json:"source"`
	Kind        string    `json:"kind"`
	Score       int       `json:"score,omitempty"`
	Comments    int       `json:"comments,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Result is the successful outcome of one invocation. Generative services fill
// Text; list-style services fill Items.
type Result struct {
	Service string
	Text    string
	Items   []Item
}

// Client is the uniform adapter contract.
type Client interface {

	// Name identifies the service in the quota ledger and in logs.
	Name() string

	// Available reports whether the adapter has the configuration it needs. It is
	// determined at construction time and never changes afterwards.
	Available() bool

	// Invoke performs one call. Implementations classify their errors as transient
	// or permanent through Failure values and never panic on malformed responses.
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// readBody drains a response body for inclusion in error messages, truncated so
// a large error page can't flood the logs.
func readBody(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
