package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/db"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/query"
)

// swagger:route GET /v1/analytics admin getAnalytics
//
// Get Request Analytics
//
// Aggregates the recorded request telemetry: totals, top topics, per-service
// success rates, and a daily breakdown.
//
// responses:
//   200: analyticsResponse
//   400: badRequestResponse
//   401: unauthorizedResponse
//   503: serviceUnavailableResponse

// GetAnalytics aggregates request telemetry over the requested window.
func (s Server) GetAnalytics(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "request analytics"})

	context := ctx.Request().Context()

	if err = s.adminGuard(ctx); err != nil {
		return nil
	}

	if s.GORMDB == nil {
		return model.Error(ctx, ErrStorageNotConfigured.Error(), httpStatusCode(ErrStorageNotConfigured))
	}

	// Extract the query parameters.
	var days int32 = 7
	days, err = query.ValidateIntQueryParam(ctx, "days", &days, "gte=1", "lte=90")
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	analytics, err := db.GetAnalytics(context, s.GORMDB, int(days))
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debugf("aggregated %d requests over %d days", analytics.TotalRequests, days)

	return model.Success(ctx, analytics, http.StatusOK)
}
