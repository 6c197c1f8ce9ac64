package model

import "github.com/labstack/echo/v4"

// ServiceInfo describes the running service in root endpoint responses.
//
// swagger:model
type ServiceInfo struct {

	// The service identifier
	Service string `json:"service"`

	// The human readable service title
	Title string `json:"title"`

	// The service version
	Version string `json:"version"`
}

// SuccessResponse is the envelope used for all successful responses.
//
// swagger:model
type SuccessResponse struct {

	// The result of the request
	Result interface{} `json:"result,omitempty"`

	// The HTTP status of the response
	Status int `json:"status"`
}

// ErrorResponse is the envelope used for all error responses.
//
// swagger:model
type ErrorResponse struct {

	// A brief description of the error
	Message string `json:"error"`

	// The HTTP status of the response
	Status int `json:"status"`
}

// Success sends a response with the given result wrapped in the standard envelope.
func Success(ctx echo.Context, result interface{}, status int) error {
	return ctx.JSON(status, SuccessResponse{Result: result, Status: status})
}

// SuccessMessage sends a response with a simple informational message.
func SuccessMessage(ctx echo.Context, msg string, status int) error {
	return Success(ctx, msg, status)
}

// Error sends an error response wrapped in the standard envelope.
func Error(ctx echo.Context, msg string, status int) error {
	return ctx.JSON(status, ErrorResponse{Message: msg, Status: status})
}
