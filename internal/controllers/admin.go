package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/db"
	"github.com/contentpilot/cps/internal/httpmodel"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/query"
)

// adminGuard verifies the admin session token header. On failure the 401
// response is sent here and an error is returned so the handler can stop.
func (s Server) adminGuard(ctx echo.Context) error {
	token := strings.TrimSpace(ctx.Request().Header.Get(adminTokenHeader))
	if token != "" && s.Sessions.Valid(ctx.Request().Context(), token) {
		return nil
	}

	sendErr := model.Error(ctx, ErrNotAuthenticated.Error(), httpStatusCode(ErrNotAuthenticated))
	if sendErr != nil {
		ctx.Logger().Errorf("unable to send response: %s", sendErr.Error())
	}
	return ErrNotAuthenticated
}

// AdminSessionInfo is the response body for a successful admin login.
//
// swagger:model
type AdminSessionInfo struct {

	// The session token to present in the admin token header
	Token string `json:"token"`

	// The date and time the session expires
	ExpiresAt time.Time `json:"expires_at"`
}

// swagger:route POST /v1/admin/sessions admin adminLogin
//
// Start an Admin Session
//
// Checks the admin password and returns a session token for the admin
// endpoints.
//
// responses:
//   200: adminSessionResponse
//   400: badRequestResponse
//   401: unauthorizedResponse
//   500: internalServerErrorResponse
//   503: serviceUnavailableResponse

// AdminLogin checks the password and starts an admin session. The comparison is
// constant-time so response timing reveals nothing about the password.
func (s Server) AdminLogin(ctx echo.Context) error {
	var (
		err     error
		request httpmodel.AdminLogin
	)

	log := log.WithFields(logrus.Fields{"context": "admin login"})

	context := ctx.Request().Context()

	// Extract and validate the request body.
	if err = ctx.Bind(&request); err != nil {
		return model.Error(ctx, "invalid request body", http.StatusBadRequest)
	}
	if err = request.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	if s.Spec.AdminPassword == "" {
		return model.Error(ctx, ErrAdminNotConfigured.Error(), httpStatusCode(ErrAdminNotConfigured))
	}

	client := s.clientID(ctx)

	if subtle.ConstantTimeCompare([]byte(request.Password), []byte(s.Spec.AdminPassword)) != 1 {
		s.recordSecurityEvent(context, model.EventLoginFailed, client, "wrong admin password", model.SeverityWarning)
		log.Warnf("failed admin login from %s", client)
		return model.Error(ctx, "wrong password", http.StatusUnauthorized)
	}

	token, expiresAt, err := s.Sessions.Create(context)
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	s.recordSecurityEvent(context, model.EventLoginSucceeded, client, "", model.SeverityInfo)
	log.Infof("admin login from %s", client)

	return model.Success(ctx, AdminSessionInfo{Token: token, ExpiresAt: expiresAt}, http.StatusOK)
}

// swagger:route DELETE /v1/admin/sessions admin adminLogout
//
// End an Admin Session
//
// Ends the session named by the admin token header.
//
// responses:
//   200: successMessageResponse
//   401: unauthorizedResponse
//   500: internalServerErrorResponse

// AdminLogout ends the session named by the admin token header.
func (s Server) AdminLogout(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "admin logout"})

	token := strings.TrimSpace(ctx.Request().Header.Get(adminTokenHeader))
	if token == "" {
		return model.Error(ctx, ErrNotAuthenticated.Error(), httpStatusCode(ErrNotAuthenticated))
	}

	if err := s.Sessions.Delete(ctx.Request().Context(), token); err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Info("admin session ended")

	return model.SuccessMessage(ctx, "logged out", http.StatusOK)
}

// swagger:route GET /v1/admin/security-events admin securityEvents
//
// List Security Events
//
// Lists the recorded security events, newest first.
//
// responses:
//   200: securityEventListing
//   400: badRequestResponse
//   401: unauthorizedResponse
//   500: internalServerErrorResponse
//   503: serviceUnavailableResponse

// SecurityEvents lists the recorded security events, newest first.
func (s Server) SecurityEvents(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "security events"})

	context := ctx.Request().Context()

	if err = s.adminGuard(ctx); err != nil {
		return nil
	}

	if s.GORMDB == nil {
		return model.Error(ctx, ErrStorageNotConfigured.Error(), httpStatusCode(ErrStorageNotConfigured))
	}

	// Extract the query parameters.
	var hours int32 = 24
	hours, err = query.ValidateIntQueryParam(ctx, "hours", &hours, "gte=1", "lte=720")
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	severity := "all"
	validSeverities := []string{"all", model.SeverityInfo, model.SeverityWarning, model.SeverityCritical}
	severity, err = query.ValidateEnumQueryParam(ctx, "severity", validSeverities, &severity)
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	events, err := db.ListSecurityEvents(context, s.GORMDB, int(hours))
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	if severity != "all" {
		filtered := make([]model.SecurityEvent, 0, len(events))
		for _, event := range events {
			if event.Severity == severity {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	log.Debugf("returning %d security events", len(events))

	return model.Success(ctx, events, http.StatusOK)
}

// swagger:route GET /v1/admin/alerts admin adminAlerts
//
// List Firing Alerts
//
// Evaluates the alert conditions and reports the ones currently firing.
//
// responses:
//   200: alertsResponse
//   401: unauthorizedResponse

// AdminAlerts reports the alert conditions currently firing.
func (s Server) AdminAlerts(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "admin alerts"})

	if err := s.adminGuard(ctx); err != nil {
		return nil
	}

	alerts := s.Alerts.Evaluate(ctx.Request().Context())

	log.Debugf("%d alert conditions firing", len(alerts))

	return model.Success(ctx, alerts, http.StatusOK)
}
