package model

import "time"

// Request type constants for client request telemetry.
const (
	RequestTypeResearch = "research"
	RequestTypeContent  = "content"
)

// Security event types recorded by the service.
const (
	EventLoginFailed    = "login_failed"
	EventLoginSucceeded = "login_succeeded"
	EventRateLimited    = "rate_limited"
	EventSafetyBlocked  = "safety_blocked"
)

// Severity levels for security events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// ClientRequest records one pipeline request for telemetry and analytics.
//
// swagger:model
type ClientRequest struct {

	// The request record identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The client identifier the request was made under
	//
	// required: true
	ClientID string `gorm:"type:text;not null;index" json:"client_id"`

	// The topic the request was about
	Topic string `gorm:"type:text;not null" json:"topic"`

	// The request type, either research or content
	RequestType string `gorm:"type:text;not null" json:"request_type"`

	// Whether the request produced a live result
	Success bool `gorm:"not null" json:"success"`

	// The error detail for failed requests, if any
	ErrorDetail *string `gorm:"type:text" json:"error_detail,omitempty"`

	// The request duration in milliseconds
	ResponseTimeMs int64 `gorm:"not null;default:0" json:"response_time_ms"`

	// The date and time the request was recorded
	//
	// readOnly: true
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ClientRequest) TableName() string {
	return "client_requests"
}

// SecurityEvent records one notable security occurrence, such as a failed admin
// login or a rate-limited client.
//
// swagger:model
type SecurityEvent struct {

	// The event record identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The event type
	//
	// required: true
	EventType string `gorm:"type:text;not null" json:"event_type"`

	// The client identifier the event is attributed to
	ClientID string `gorm:"type:text;not null" json:"client_id"`

	// Additional detail about the event
	Details *string `gorm:"type:text" json:"details,omitempty"`

	// The event severity
	Severity string `gorm:"type:text;not null;default:'info'" json:"severity"`

	// The date and time the event was recorded
	//
	// readOnly: true
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SecurityEvent) TableName() string {
	return "security_events"
}
