package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/contentpilot/cps/internal/db"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/utils"
)

// Request headers the handlers read.
const (
	clientIDHeader   = "X-CPS-Client-ID"
	adminTokenHeader = "X-CPS-Admin-Token"
)

var (
	ErrNotAuthenticated     = errors.New("admin authentication required")
	ErrAdminNotConfigured   = errors.New("admin access is not configured")
	ErrStorageNotConfigured = errors.New("persistent storage is not configured")
)

func httpStatusCode(err error) int {
	switch err {
	case ErrNotAuthenticated:
		return http.StatusUnauthorized
	case ErrAdminNotConfigured:
		return http.StatusServiceUnavailable
	case ErrStorageNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clientID identifies the caller for rate limiting and telemetry. Clients that
// send the client ID header get a stable identity; everyone else is keyed by
// network address.
func (s Server) clientID(ctx echo.Context) string {
	if id := strings.TrimSpace(ctx.Request().Header.Get(clientIDHeader)); id != "" {
		return id
	}
	return ctx.RealIP()
}

// checkAllowance enforces the per-client request allowance. If the client is over
// a limit, the 429 response is sent here and an error is returned so the caller
// can stop. Denied requests never count against the allowance.
func (s Server) checkAllowance(ctx echo.Context, clientID string) error {
	allowed, reason := s.Limits.Allow(clientID)
	if allowed {
		return nil
	}

	s.recordSecurityEvent(ctx.Request().Context(), model.EventRateLimited, clientID, reason, model.SeverityWarning)

	msg := fmt.Sprintf("request limit reached: %s", reason)
	sendErr := model.Error(ctx, msg, http.StatusTooManyRequests)
	if sendErr != nil {
		ctx.Logger().Errorf("unable to send response: %s", sendErr.Error())
	}
	return errors.New(msg)
}

// recordRequestTelemetry stores one pipeline request row. It is a no-op without a
// database, and storage failures are logged rather than surfaced.
func (s Server) recordRequestTelemetry(ctx context.Context, clientID, topic, requestType string, success bool, errDetail string, elapsed time.Duration) {
	if s.GORMDB == nil {
		return
	}

	request := &model.ClientRequest{
		ClientID:       clientID,
		Topic:          utils.NormalizeTopicKey(topic),
		RequestType:    requestType,
		Success:        success,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if errDetail != "" {
		request.ErrorDetail = &errDetail
	}

	if err := db.RecordClientRequest(ctx, s.GORMDB, request); err != nil {
		log.Warnf("unable to record request telemetry: %s", err.Error())
	}
}

// recordSecurityEvent stores one security event row. It is a no-op without a
// database, and storage failures are logged rather than surfaced.
func (s Server) recordSecurityEvent(ctx context.Context, eventType, clientID, details, severity string) {
	if s.GORMDB == nil {
		return
	}

	event := &model.SecurityEvent{
		EventType: eventType,
		ClientID:  clientID,
		Severity:  severity,
	}
	if details != "" {
		event.Details = &details
	}

	if err := db.RecordSecurityEvent(ctx, s.GORMDB, event); err != nil {
		log.Warnf("unable to record a security event: %s", err.Error())
	}
}
