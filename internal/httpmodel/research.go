// Package httpmodel contains the request bodies accepted by the HTTP API, along
// with their validation rules.
package httpmodel

import (
	"fmt"
	"strings"
)

// The longest topic the API accepts, in characters.
const maxTopicLength = 200

// ResearchRequest
//
// swagger:model
type ResearchRequest struct {

	// The topic to research
	//
	// required: true
	Topic string `json:"topic"`
}

// Validate verifies that the research request is usable.
func (r ResearchRequest) Validate() error {
	return validateTopic(r.Topic)
}

// validateTopic applies the shared topic rules: present, not just whitespace,
// and short enough to pass through prompts and log fields.
func validateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("a topic is required")
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("the topic must not exceed %d characters", maxTopicLength)
	}
	return nil
}
