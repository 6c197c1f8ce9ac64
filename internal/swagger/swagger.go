// Package api CPS
//
// Documentation of the Content Pilot Service API
//
//	Schemes: http
//	BasePath: /
//	Version: V1
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package swagger

import (
	"github.com/contentpilot/cps/internal/alerts"
	"github.com/contentpilot/cps/internal/controllers"
	"github.com/contentpilot/cps/internal/httpmodel"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/research"
)

// Note: the comments in this package don't conform to the convention of including the name of the entity that the
// comment describes. The reason for this is because the comments appear as-is in the API documentation. Confusing
// documentation is produced when the structure names appear in the API documentation.

// Error
//
// Having the same object definition for multiple HTTP response status codes seems to confuse ReDoc, so we're using
// aliases as a workaround.
//
// swagger:response errorResponse
type ErrorResponse struct {

	// in: body
	Body struct {

		// A brief description of the error
		Error string `json:"error"`

		// The HTTP status of the response
		Status int `json:"status"`
	}
}

// Bad Request
//
// swagger:response badRequestResponse
type BadRequestResponse struct {
	ErrorResponse
}

// Unauthorized
//
// swagger:response unauthorizedResponse
type UnauthorizedResponse struct {
	ErrorResponse
}

// Unprocessable Entity
//
// swagger:response unprocessableResponse
type UnprocessableResponse struct {
	ErrorResponse
}

// Too Many Requests
//
// swagger:response rateLimitedResponse
type RateLimitedResponse struct {
	ErrorResponse
}

// Internal Server Error
//
// swagger:response internalServerErrorResponse
type InternalServerErrorResponse struct {
	ErrorResponse
}

// Bad Gateway
//
// swagger:response badGatewayResponse
type BadGatewayResponse struct {
	ErrorResponse
}

// Service Unavailable
//
// swagger:response serviceUnavailableResponse
type ServiceUnavailableResponse struct {
	ErrorResponse
}

// Documentation for the successful response body wrapper. The `Error` field could be included here as well, but it's
// being omitted for now simply because it produces less confusing documentation when the error and success response
// bodies are treated separately.
//
// swagger:model
type ResponseBodyWrapper struct {

	// The HTTP status of the response
	Status int `json:"status"`
}

// Service Information
//
// swagger:response rootResponse
type RootResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The service information
		Result model.ServiceInfo `json:"result"`
	}
}

// General Success Message
//
// swagger:response successMessageResponse
type SuccessMessageResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The success message.
		Result string `json:"result"`
	}
}

// Topics

// Parameters for the endpoint used to research a topic.
//
// swagger:parameters researchTopic
type ResearchTopicParameters struct {

	// The research request
	//
	// in: body
	Body httpmodel.ResearchRequest
}

// Research Record
//
// swagger:response researchRecordResponse
type ResearchRecordResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The research record
		Result research.Record `json:"result"`
	}
}

// Trending topic listing parameters.
//
// swagger:parameters trendingTopics
type TrendingTopicsParameters struct {

	// The maximum number of topics to return
	//
	// in: query
	Limit int32 `json:"limit"`

	// If `true`, drop the cached listing and mine a fresh one.
	//
	// in: query
	Refresh bool `json:"refresh"`
}

// Trending Topics
//
// swagger:response trendingTopicsResponse
type TrendingTopicsResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The trending topics, hottest first
		Result []research.TrendingTopic `json:"result"`
	}
}

// Content

// Parameters for the endpoint used to generate content.
//
// swagger:parameters generateContent
type GenerateContentParameters struct {

	// The generation request
	//
	// in: body
	Body httpmodel.GenerateRequest
}

// Generated Content
//
// swagger:response generatedContentResponse
type GeneratedContentResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The research record and scored variations
		Result controllers.GeneratedContent `json:"result"`
	}
}

// Parameters for the endpoint used to score draft text.
//
// swagger:parameters scoreContent
type ScoreContentParameters struct {

	// The scoring request
	//
	// in: body
	Body httpmodel.ScoreRequest
}

// Content Score
//
// swagger:response contentScoreResponse
type ContentScoreResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The score breakdown
		Result controllers.ContentScore `json:"result"`
	}
}

// Quotas

// Quota Standings
//
// swagger:response quotaReportResponse
type QuotaReportResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// Today's per-service quota standings
		Result model.QuotaReport `json:"result"`
	}
}

// Feedback

// Parameters for the endpoint used to submit feedback.
//
// swagger:parameters submitFeedback
type SubmitFeedbackParameters struct {

	// The feedback submission
	//
	// in: body
	Body httpmodel.NewFeedback
}

// Feedback summary parameters.
//
// swagger:parameters feedbackSummary
type FeedbackSummaryParameters struct {

	// The number of days the summary covers
	//
	// in: query
	Days int32 `json:"days"`
}

// Feedback Summary
//
// swagger:response feedbackSummaryResponse
type FeedbackSummaryResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The aggregated feedback
		Result model.FeedbackSummary `json:"result"`
	}
}

// Analytics

// Analytics parameters.
//
// swagger:parameters getAnalytics
type AnalyticsParameters struct {

	// The number of days the analytics cover
	//
	// in: query
	Days int32 `json:"days"`
}

// Request Analytics
//
// swagger:response analyticsResponse
type AnalyticsResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The aggregated request telemetry
		Result model.Analytics `json:"result"`
	}
}

// Admin

// Parameters for the admin login endpoint.
//
// swagger:parameters adminLogin
type AdminLoginParameters struct {

	// The login request
	//
	// in: body
	Body httpmodel.AdminLogin
}

// Admin Session
//
// swagger:response adminSessionResponse
type AdminSessionResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The session token and expiration
		Result controllers.AdminSessionInfo `json:"result"`
	}
}

// Security event listing parameters.
//
// swagger:parameters securityEvents
type SecurityEventsParameters struct {

	// The number of hours of history to return
	//
	// in: query
	Hours int32 `json:"hours"`

	// The severity to filter by
	//
	// enum: all,info,warning,critical
	// in: query
	Severity string `json:"severity"`
}

// Security Events
//
// swagger:response securityEventListing
type SecurityEventListingWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The security events, newest first
		Result []model.SecurityEvent `json:"result"`
	}
}

// Admin Alerts
//
// swagger:response alertsResponse
type AlertsResponseWrapper struct {

	// in: body
	Body struct {
		ResponseBodyWrapper

		// The alert conditions currently firing
		Result []alerts.Alert `json:"result"`
	}
}
