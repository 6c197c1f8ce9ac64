package httpmodel

import (
	"fmt"
	"strings"
)

// GenerateRequest
//
// swagger:model
type GenerateRequest struct {

	// The topic to generate content for
	//
	// required: true
	Topic string `json:"topic"`

	// The requested content styles, at most three. Defaults to all of the
	// built-in styles when omitted.
	Styles []string `json:"styles"`
}

// Validate verifies that all the required fields in a generation request are
// present and usable.
func (r GenerateRequest) Validate() error {
	if err := validateTopic(r.Topic); err != nil {
		return err
	}

	if len(r.Styles) > 3 {
		return fmt.Errorf("at most three styles may be requested")
	}
	for _, style := range r.Styles {
		if strings.TrimSpace(style) == "" {
			return fmt.Errorf("style names must not be empty")
		}
	}

	return nil
}

// ScoreRequest
//
// swagger:model
type ScoreRequest struct {

	// The draft text to score
	//
	// required: true
	Text string `json:"text"`

	// The style whose word-count target applies. Defaults to the general range
	// when omitted or unknown.
	Style string `json:"style"`
}

// Validate verifies that the scoring request contains text to score.
func (r ScoreRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text to score is required")
	}
	return nil
}
