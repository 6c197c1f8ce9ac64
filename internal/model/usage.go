package model

import "time"

// APIUsage is the persisted daily call ledger row for one external service.
//
// swagger:model
type APIUsage struct {

	// The usage record identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The external service name
	//
	// required: true
	ServiceName string `gorm:"type:text;not null;index:api_usage_service_date,unique" json:"service_name"`

	// The calendar day the counters apply to
	//
	// required: true
	UsageDate time.Time `gorm:"type:date;not null;index:api_usage_service_date,unique" json:"usage_date"`

	// The number of successful calls recorded for the day
	SuccessCount int64 `gorm:"not null;default:0" json:"success_count"`

	// The number of failed calls recorded for the day
	FailureCount int64 `gorm:"not null;default:0" json:"failure_count"`

	// The most recent error detail recorded for the day, if any
	LastError *string `gorm:"type:text" json:"last_error,omitempty"`

	// The date and time the row was last modified
	LastModifiedAt *time.Time `gorm:"->" json:"last_modified_at,omitempty"`
}

func (APIUsage) TableName() string {
	return "api_usage"
}

// QuotaStatus reports one service's standing against its daily call ceiling.
//
// swagger:model
type QuotaStatus struct {

	// The external service name
	Service string `json:"service"`

	// The number of successful calls counted so far today
	Success int64 `json:"success"`

	// The number of failed calls counted so far today. Failures never consume
	// quota.
	Failure int64 `json:"failure"`

	// The daily ceiling, absent for unlimited services
	Ceiling *int `json:"ceiling,omitempty"`

	// The number of calls left today, absent for unlimited services
	Remaining *int64 `json:"remaining,omitempty"`

	// Whether the service can still be called today
	Eligible bool `json:"eligible"`
}

// QuotaReport is the full quota listing returned by the quota endpoints.
//
// swagger:model
type QuotaReport struct {

	// The day the counters apply to, in YYYY-MM-DD form
	Day string `json:"day"`

	// The per-service standings
	Services []QuotaStatus `json:"services"`
}
