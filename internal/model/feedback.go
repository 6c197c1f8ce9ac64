package model

import "time"

// Feedback is one user rating of generated content.
//
// swagger:model
type Feedback struct {

	// The feedback record identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The topic the content was generated for
	//
	// required: true
	Topic string `gorm:"type:text;not null" json:"topic"`

	// The style tag of the rated variation
	Style string `gorm:"type:text;not null" json:"style"`

	// The rating, from 1 to 5
	//
	// required: true
	Rating int `gorm:"not null" json:"rating"`

	// Optional free-text comments
	Comments *string `gorm:"type:text" json:"comments,omitempty"`

	// The client identifier the feedback was submitted under
	ClientID string `gorm:"type:text;not null" json:"client_id"`

	// The date and time the feedback was recorded
	//
	// readOnly: true
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackSummary aggregates recent feedback for telemetry displays.
//
// swagger:model
type FeedbackSummary struct {

	// The average rating over the window
	AverageRating float64 `json:"average_rating"`

	// The total number of ratings in the window
	TotalRatings int64 `json:"total_ratings"`

	// The number of ratings submitted per rating value (1 through 5)
	Distribution map[int]int64 `json:"distribution"`

	// The number of days the summary covers
	WindowDays int `json:"window_days"`
}
