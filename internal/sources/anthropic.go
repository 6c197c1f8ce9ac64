package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/contentpilot/cps/config"
)

const anthropicName = "anthropic"

// anthropicVersion is the API version header Anthropic requires on every call.
const anthropicVersion = "2023-06-01"

// Anthropic calls the Anthropic messages API.
type Anthropic struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropic creates the adapter from its service settings.
func NewAnthropic(spec config.ServiceSpec, timeout time.Duration) *Anthropic {
	return &Anthropic{
		key:     spec.Key,
		model:   spec.Model,
		baseURL: spec.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *Anthropic) Name() string {
	return anthropicName
}

func (a *Anthropic) Available() bool {
	return a.key != ""
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Anthropic) Invoke(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 1024,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, permanent(anthropicName, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, permanent(anthropicName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", a.key)
	httpReq.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, transient(anthropicName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPStatus(anthropicName, resp.StatusCode, readBody(resp.Body))
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, permanent(anthropicName, errors.Wrap(err, "unable to decode the response"))
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return nil, permanent(anthropicName, errors.New("the response contained no text"))
	}

	return &Result{Service: anthropicName, Text: parsed.Content[0].Text}, nil
}
