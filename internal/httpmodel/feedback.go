package httpmodel

import (
	"fmt"
	"strings"

	"github.com/contentpilot/cps/internal/model"
)

// NewFeedback
//
// swagger:model
type NewFeedback struct {

	// The topic the rated content was generated for
	//
	// required: true
	Topic string `json:"topic"`

	// The style of the rated variation
	Style string `json:"style"`

	// The rating, from 1 to 5
	//
	// required: true
	Rating int `json:"rating"`

	// Optional free-form comments
	Comments string `json:"comments"`
}

// Validate verifies that all the required fields in a feedback submission are
// present and within range.
func (f NewFeedback) Validate() error {
	if err := validateTopic(f.Topic); err != nil {
		return err
	}
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("the rating must be between 1 and 5")
	}
	if len(f.Comments) > 2000 {
		return fmt.Errorf("comments must not exceed 2000 characters")
	}
	return nil
}

// ToDBModel converts a feedback submission to its equivalent database model.
func (f NewFeedback) ToDBModel(clientID string) model.Feedback {
	feedback := model.Feedback{
		Topic:    strings.TrimSpace(f.Topic),
		Style:    f.Style,
		Rating:   f.Rating,
		ClientID: clientID,
	}
	if comments := strings.TrimSpace(f.Comments); comments != "" {
		feedback.Comments = &comments
	}
	return feedback
}
