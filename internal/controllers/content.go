package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/contentpilot/cps/internal/content"
	"github.com/contentpilot/cps/internal/httpmodel"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/research"
	"github.com/contentpilot/cps/internal/safety"
)

// GeneratedContent is the response body for the content generation endpoint.
//
// swagger:model
type GeneratedContent struct {

	// The topic the content was generated for
	Topic string `json:"topic"`

	// The research record the drafts drew on
	Research *research.Record `json:"research"`

	// The scored draft variations
	Variations []content.Variation `json:"variations"`
}

// swagger:route POST /v1/content content generateContent
//
// Generate Content
//
// Runs the full pipeline: researches the topic, then produces scored post
// drafts from the findings.
//
// responses:
//   200: generatedContentResponse
//   400: badRequestResponse
//   422: unprocessableResponse
//   429: rateLimitedResponse
//   500: internalServerErrorResponse

// GenerateContent researches the topic and produces scored draft variations.
func (s Server) GenerateContent(ctx echo.Context) error {
	var (
		err     error
		request httpmodel.GenerateRequest
	)

	log := log.WithFields(logrus.Fields{"context": "content generation"})

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
			s.recordRequestTelemetry(context, client, request.Topic, model.RequestTypeContent, false, details, time.Since(start))
			log.Infof("topic rejected by the safety filter: %s", details)
			return model.Error(ctx, err.Error(), http.StatusBadRequest)
		}
		log.Error(err)
		return model.Error(ctx, err.Error(), httpStatusCode(err))
	}

	// Prebuilt posts ride along with cached records and beat the templates.
	var cachedPosts map[string]string
	if record.Provenance == research.ProvenanceCached {
		_, cachedPosts = s.Research.CachedExample(request.Topic)
	}

	variations := s.Content.Generate(context, request.Topic, record, request.Styles, cachedPosts)
	if len(variations) == 0 {
		msg := "every generated draft failed the safety check"
		s.recordRequestTelemetry(context, client, request.Topic, model.RequestTypeContent, false, msg, time.Since(start))
		log.Warn(msg)
		return model.Error(ctx, msg, http.StatusUnprocessableEntity)
	}

	live := false
	for _, variation := range variations {
		if variation.Generator != content.GeneratorTemplate && variation.Generator != content.GeneratorCached {
			live = true
			break
		}
	}
	s.recordRequestTelemetry(context, client, request.Topic, model.RequestTypeContent, live, "", time.Since(start))

	log.Infof("generated %d variations", len(variations))

	result := GeneratedContent{
		Topic:      request.Topic,
		Research:   record,
		Variations: variations,
	}
	return model.Success(ctx, result, http.StatusOK)
}

// ContentScore is the response body for the scoring endpoint.
//
// swagger:model
type ContentScore struct {

	// The style whose word-count target was applied
	Style string `json:"style"`

	// The word count of the scored text
	WordCount int `json:"word_count"`

	// The hashtags found in the text
	Hashtags []string `json:"hashtags"`

	// The per-component score breakdown
	Breakdown content.Breakdown `json:"breakdown"`

	// Safety warnings raised against the text, if any
	Warnings []string `json:"warnings,omitempty"`
}

// swagger:route POST /v1/content/score content scoreContent
//
// Score Draft Text
//
// Scores caller-provided text against the engagement heuristics without
// generating anything.
//
// responses:
//   200: contentScoreResponse
//   400: badRequestResponse

// ScoreContent scores caller-provided text without generating anything. Text
// that the safety filter blocks outright is not scored.
func (s Server) ScoreContent(ctx echo.Context) error {
	var (
		err     error
		request httpmodel.ScoreRequest
	)

	log := log.WithFields(logrus.Fields{"context": "content scoring"})

	// Extract and validate the request body.
	if err = ctx.Bind(&request); err != nil {
		return model.Error(ctx, "invalid request body", http.StatusBadRequest)
	}
	if err = request.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	report := s.Safety.Check(request.Text)
	if !report.Safe {
		msg := "the text failed the safety check: " + strings.Join(report.Issues, "; ")
		log.Info(msg)
		return model.Error(ctx, msg, http.StatusBadRequest)
	}

	result := ContentScore{
		Style:     request.Style,
		WordCount: len(strings.Fields(request.Text)),
		Hashtags:  content.ExtractHashtags(request.Text),
		Breakdown: s.Content.Scorer().Breakdown(request.Text, request.Style),
		Warnings:  report.Issues,
	}

	log.Debugf("scored a %d word draft at %.1f", result.WordCount, result.Breakdown.Total)

	return model.Success(ctx, result, http.StatusOK)
}
