package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/contentpilot/cps/config"
)

const geminiName = "gemini"

// Gemini calls Google's generative language API.
type Gemini struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates the adapter from its service settings.
func NewGemini(spec config.ServiceSpec, timeout time.Duration) *Gemini {
	return &Gemini{
		key:     spec.Key,
		model:   spec.Model,
		baseURL: spec.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *Gemini) Name() string {
	return geminiName
}

func (g *Gemini) Available() bool {
	return g.key != ""
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Invoke(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
	})
	if err != nil {
		return nil, permanent(geminiName, err)
	}

	// The key travels as a query parameter rather than a header.
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, permanent(geminiName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, transient(geminiName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPStatus(geminiName, resp.StatusCode, readBody(resp.Body))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, permanent(geminiName, errors.Wrap(err, "unable to decode the response"))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, permanent(geminiName, errors.New("the response contained no candidates"))
	}

	return &Result{Service: geminiName, Text: parsed.Candidates[0].Content.Parts[0].Text}, nil
}
