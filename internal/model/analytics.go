package model

// TopicCount is one entry in the popular-topics listing.
//
// swagger:model
type TopicCount struct {

	// The normalized topic
	Topic string `json:"topic"`

	// The number of requests made about the topic
	Count int64 `json:"count"`
}

// ServiceRate summarizes one external service's call outcomes over the window.
//
// swagger:model
type ServiceRate struct {

	// The external service name
	ServiceName string `json:"service_name"`

	// The number of successful calls
	Success int64 `json:"success"`

	// The number of failed calls
	Failure int64 `json:"failure"`

	// The fraction of calls that succeeded, from 0 to 1
	SuccessRate float64 `json:"success_rate"`
}

// DayCount is one day's request total in the daily breakdown.
//
// swagger:model
type DayCount struct {

	// The calendar day, formatted as YYYY-MM-DD
	Day string `json:"day"`

	// The number of requests recorded on the day
	Count int64 `json:"count"`
}

// Analytics aggregates request telemetry for the admin dashboard.
//
// swagger:model
type Analytics struct {

	// The total number of requests in the window
	TotalRequests int64 `json:"total_requests"`

	// The number of distinct clients in the window
	UniqueClients int64 `json:"unique_clients"`

	// The fraction of requests that produced a live result, from 0 to 1
	SuccessRate float64 `json:"success_rate"`

	// The five most requested topics
	PopularTopics []TopicCount `json:"popular_topics"`

	// Per-service call outcome rates
	ServiceRates []ServiceRate `json:"api_success_rates"`

	// Requests per day across the window
	DailyBreakdown []DayCount `json:"daily_breakdown"`

	// The number of days the analytics cover
	WindowDays int `json:"window_days"`
}
