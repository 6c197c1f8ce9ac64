package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/db"
	"github.com/contentpilot/cps/internal/httpmodel"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/query"
)

// swagger:route POST /v1/feedback feedback submitFeedback
//
// Submit Feedback
//
// Records one rating of a generated draft.
//
// responses:
//   200: successMessageResponse
//   400: badRequestResponse
//   500: internalServerErrorResponse

// SubmitFeedback records one content rating. Submissions are accepted even when
// no database is configured; they just are not retained.
func (s Server) SubmitFeedback(ctx echo.Context) error {
	var (
		err     error
		request httpmodel.NewFeedback
	)

	log := log.WithFields(logrus.Fields{"context": "submitting feedback"})

	context := ctx.Request().Context()

	// Extract and validate the request body.
	if err = ctx.Bind(&request); err != nil {
		return model.Error(ctx, "invalid request body", http.StatusBadRequest)
	}
	if err = request.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	client := s.clientID(ctx)
	log = log.WithFields(logrus.Fields{"client": client, "topic": request.Topic})

	if s.GORMDB == nil {
		log.Info("received feedback with no database configured, dropping it")
		return model.SuccessMessage(ctx, "thanks for the feedback", http.StatusOK)
	}

	feedback := request.ToDBModel(client)
	if err = db.SaveFeedback(context, s.GORMDB, &feedback); err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Infof("recorded a rating of %d", request.Rating)

	return model.SuccessMessage(ctx, "thanks for the feedback", http.StatusOK)
}

// swagger:route GET /v1/feedback/summary feedback feedbackSummary
//
// Summarize Feedback
//
// Reports the average rating, rating count, and per-rating distribution over
// the requested window.
//
// responses:
//   200: feedbackSummaryResponse
//   400: badRequestResponse
//   500: internalServerErrorResponse
//   503: serviceUnavailableResponse

// FeedbackSummary reports the average rating, rating count, and per-rating
// distribution over the requested window.
func (s Server) FeedbackSummary(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "summarizing feedback"})

	context := ctx.Request().Context()

	if s.GORMDB == nil {
		return model.Error(ctx, ErrStorageNotConfigured.Error(), httpStatusCode(ErrStorageNotConfigured))
	}

	// Extract the query parameters.
	var days int32 = 7
	days, err = query.ValidateIntQueryParam(ctx, "days", &days, "gte=1", "lte=365")
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	summary, err := db.GetFeedbackSummary(context, s.GORMDB, int(days))
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, summary, http.StatusOK)
}
