package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/httpmodel"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/query"
	"github.com/contentpilot/cps/internal/research"
	"github.com/contentpilot/cps/internal/safety"
)

// swagger:route POST /v1/topics/research topics researchTopic
//
// Research a Topic
//
// Produces a research record for the topic, served by the first eligible live
// source or by the cached example bundle when none is available.
//
// responses:
//   200: researchRecordResponse
//   400: badRequestResponse
//   429: rateLimitedResponse
//   500: internalServerErrorResponse

// ResearchTopic runs the research pipeline for one topic.
func (s Server) ResearchTopic(ctx echo.Context) error {
	var (
		err     error
		request httpmodel.ResearchRequest
	)

	log := log.WithFields(logrus.Fields{"context": "topic research"})

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

	// Enforce the per-client allowance. The 429 response is sent by the check.
	if err = s.checkAllowance(ctx, client); err != nil {
		return nil
	}

	start := time.Now()
	record, err := s.Research.Research(context, request.Topic)
	if err != nil {
		var rejection *safety.RejectionError
		if errors.As(err, &rejection) {
			details := strings.Join(rejection.Report.Issues, "; ")
			s.recordSecurityEvent(context, model.EventSafetyBlocked, client, details, model.SeverityWarning)
			s.recordRequestTelemetry(context, client, request.Topic, model.RequestTypeResearch, false, details, time.Since(start))
			log.Infof("topic rejected by the safety filter: %s", details)
			return model.Error(ctx, err.Error(), http.StatusBadRequest)
		}
		log.Error(err)
		return model.Error(ctx, err.Error(), httpStatusCode(err))
	}

	live := record.Provenance == research.ProvenanceLive
	s.recordRequestTelemetry(context, client, request.Topic, model.RequestTypeResearch, live, "", time.Since(start))

	log.Infof("research served from the %s path by %s", record.Provenance, record.Service)

	return model.Success(ctx, record, http.StatusOK)
}

// swagger:route GET /v1/topics/trending topics trendingTopics
//
// List Trending Topics
//
// Lists topics currently trending on the forum front page, hottest first.
//
// responses:
//   200: trendingTopicsResponse
//   400: badRequestResponse
//   502: badGatewayResponse

// TrendingTopics lists topics mined from the forum front page. The listing is
// cached, so repeated calls are cheap; refresh=true drops the cache first.
func (s Server) TrendingTopics(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "trending topics"})

	context := ctx.Request().Context()

	// Extract the query parameters.
	var limit int32 = 10
	limit, err = query.ValidateIntQueryParam(ctx, "limit", &limit, "gte=1", "lte=10")
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	refresh := false
	refresh, err = query.ValidateBooleanQueryParam(ctx, "refresh", &refresh)
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	if refresh {
		s.News.InvalidateTrending()
	}

	topics, err := s.News.Trending(context)
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusBadGateway)
	}
	if len(topics) > int(limit) {
		topics = topics[:limit]
	}

	log.Debugf("returning %d trending topics", len(topics))

	return model.Success(ctx, topics, http.StatusOK)
}
