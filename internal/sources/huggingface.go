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

const huggingFaceName = "huggingface"

// HuggingFace calls the hosted inference API for a text-generation model. The
// hosted endpoint answers 503 while a cold model loads, which the status mapping
// already treats as transient.
type HuggingFace struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

// NewHuggingFace creates the adapter from its service settings.
func NewHuggingFace(spec config.ServiceSpec, timeout time.Duration) *HuggingFace {
	return &HuggingFace{
		key:     spec.Key,
		model:   spec.Model,
		baseURL: spec.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HuggingFace) Name() string {
	return huggingFaceName
}

func (h *HuggingFace) Available() bool {
	return h.key != ""
}

type huggingFaceRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters huggingFaceParameters  `json:"parameters"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

type huggingFaceParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type huggingFaceGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Invoke(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(huggingFaceRequest{
		Inputs:     req.Prompt,
		Parameters: huggingFaceParameters{MaxNewTokens: 500, ReturnFullText: false},
	})
	if err != nil {
		return nil, permanent(huggingFaceName, err)
	}

	url := fmt.Sprintf("%s/models/%s", h.baseURL, h.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, permanent(huggingFaceName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.key)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, transient(huggingFaceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPStatus(huggingFaceName, resp.StatusCode, readBody(resp.Body))
	}

	var generations []huggingFaceGeneration
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return nil, permanent(huggingFaceName, errors.Wrap(err, "unable to decode the response"))
	}
	if len(generations) == 0 || generations[0].GeneratedText == "" {
		return nil, permanent(huggingFaceName, errors.New("the response contained no generations"))
	}

	return &Result{Service: huggingFaceName, Text: generations[0].GeneratedText}, nil
}
