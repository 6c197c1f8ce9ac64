package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentpilot/cps/config"
	"github.com/contentpilot/cps/internal/alerts"
	"github.com/contentpilot/cps/internal/content"
	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/limits"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/internal/research"
	"github.com/contentpilot/cps/internal/safety"
	"github.com/contentpilot/cps/internal/sources"
)

// testEnvelope decodes either response envelope.
type testEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Status int             `json:"status"`
}

// newTestServer builds a Server with no database and no live sources, so the
// pipeline always serves from the cached example bundle.
func newTestServer(t *testing.T) Server {
	t.Helper()

	spec := &config.Specification{
		ServicePriority:     []string{"anthropic", "gemini", "huggingface", "news"},
		Anthropic:           config.ServiceSpec{Ceiling: 10},
		Gemini:              config.ServiceSpec{Ceiling: 100},
		HuggingFace:         config.ServiceSpec{Ceiling: 30},
		NewsCeiling:         1000,
		RequestTimeout:      time.Second,
		Scoring:             config.DefaultScoring(),
		SafetyMaxLength:     2000,
		HourlyRequestLimit:  100,
		DailyRequestLimit:   1000,
		AdminPassword:       "swordfish",
		AdminSessionMinutes: 60,
	}

	quotas := ledger.New(ledger.NewMemoryStore(), spec.Ceilings())
	checker := safety.New(spec.SafetyMaxLength, nil)
	bundle, err := research.LoadBundle()
	require.NoError(t, err)

	return Server{
		Service:  "cps",
		Title:    "Content Pilot Service",
		Version:  "1.0.0",
		Spec:     spec,
		Quotas:   quotas,
		Research: research.New(nil, nil, quotas, checker, bundle),
		Content:  content.New(nil, nil, quotas, checker, content.NewScorer(spec.Scoring)),
		Safety:   checker,
		Limits:   limits.New(spec.HourlyRequestLimit, spec.DailyRequestLimit),
		Sessions: NewSessionStore(nil, time.Hour),
		Alerts:   alerts.New(spec, quotas, nil),
	}
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// invoke runs one handler against the request and decodes the response envelope.
func invoke(t *testing.T, handler echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)
	require.NoError(t, handler(ctx))

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, rec.Code, env.Status, "the envelope status echoes the HTTP status")
	return rec, env
}

func TestServiceInfo(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.RootHandler, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var info model.ServiceInfo
	require.NoError(t, json.Unmarshal(env.Result, &info))
	assert.Equal(t, "cps", info.Service)
	assert.Equal(t, "Content Pilot Service", info.Title)
	assert.Equal(t, "1.0.0", info.Version)

	rec, _ = invoke(t, s.V1RootHandler, httptest.NewRequest(http.MethodGet, "/v1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResearchRejectsUnusableBodies(t *testing.T) {
	s := newTestServer(t)

	bodies := []string{
		`{`,
		`{}`,
		`{"topic":"   "}`,
		fmt.Sprintf(`{"topic":%q}`, strings.Repeat("x", 201)),
	}
	for _, body := range bodies {
		rec, env := invoke(t, s.ResearchTopic, jsonRequest(http.MethodPost, "/v1/topics/research", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		assert.NotEmpty(t, env.Error)
	}
}

func TestResearchRejectsUnsafeTopics(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.ResearchTopic,
		jsonRequest(http.MethodPost, "/v1/topics/research", `{"topic":"glorifying violence online"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, env.Error)
}

func TestResearchServesCachedExamples(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.ResearchTopic,
		jsonRequest(http.MethodPost, "/v1/topics/research", `{"topic":"fintech"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	var record research.Record
	require.NoError(t, json.Unmarshal(env.Result, &record))
	assert.Equal(t, "fintech", record.Topic)
	assert.Equal(t, research.ProvenanceCached, record.Provenance)
	assert.NotEmpty(t, record.Summary)
	assert.NotEmpty(t, record.KeyInsights)
}

func TestResearchEnforcesTheRequestAllowance(t *testing.T) {
	s := newTestServer(t)
	s.Limits = limits.New(1, 10)

	rec, _ := invoke(t, s.ResearchTopic,
		jsonRequest(http.MethodPost, "/v1/topics/research", `{"topic":"fintech"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := invoke(t, s.ResearchTopic,
		jsonRequest(http.MethodPost, "/v1/topics/research", `{"topic":"fintech"}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, env.Error, "request limit reached")
}

func TestClientHeaderSeparatesAllowances(t *testing.T) {
	s := newTestServer(t)
	s.Limits = limits.New(1, 10)

	first := jsonRequest(http.MethodPost, "/v1/topics/research", `{"topic":"fintech"}`)
	first.Header.Set(clientIDHeader, "client-a")
	rec, _ := invoke(t, s.ResearchTopic, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different client ID gets its own allowance even from the same address.
	second := jsonRequest(http.MethodPost, "/v1/topics/research", `{"topic":"fintech"}`)
	second.Header.Set(clientIDHeader, "client-b")
	rec, _ = invoke(t, s.ResearchTopic, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateUsesCachedPosts(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.GenerateContent,
		jsonRequest(http.MethodPost, "/v1/content", `{"topic":"fintech","styles":["professional"]}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	var generated GeneratedContent
	require.NoError(t, json.Unmarshal(env.Result, &generated))
	assert.Equal(t, "fintech", generated.Topic)
	require.NotNil(t, generated.Research)
	assert.Equal(t, research.ProvenanceCached, generated.Research.Provenance)
	require.Len(t, generated.Variations, 1)
	assert.Equal(t, "professional", generated.Variations[0].Style)
	assert.Equal(t, content.GeneratorCached, generated.Variations[0].Generator)
	assert.Greater(t, generated.Variations[0].Score, 0.0)
}

func TestGenerateDefaultsToAllStyles(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.GenerateContent,
		jsonRequest(http.MethodPost, "/v1/content", `{"topic":"remote work"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	var generated GeneratedContent
	require.NoError(t, json.Unmarshal(env.Result, &generated))
	require.Len(t, generated.Variations, len(content.DefaultStyles))

	styles := make([]string, 0, len(generated.Variations))
	for _, variation := range generated.Variations {
		styles = append(styles, variation.Style)
		assert.NotEmpty(t, variation.Text)
		assert.Greater(t, variation.WordCount, 0)
	}
	assert.ElementsMatch(t, content.DefaultStyles, styles)
}

func TestGenerateRejectsTooManyStyles(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.GenerateContent,
		jsonRequest(http.MethodPost, "/v1/content", `{"topic":"fintech","styles":["a","b","c","d"]}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "at most three styles")
}

func TestScoreContentBreakdown(t *testing.T) {
	s := newTestServer(t)

	body := `{"text":"What do you think about fintech adoption this year? #fintech #banking","style":"professional"}`
	rec, env := invoke(t, s.ScoreContent, jsonRequest(http.MethodPost, "/v1/content/score", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	var score ContentScore
	require.NoError(t, json.Unmarshal(env.Result, &score))
	assert.Equal(t, "professional", score.Style)
	assert.Equal(t, 11, score.WordCount)
	assert.Equal(t, []string{"#fintech", "#banking"}, score.Hashtags)
	assert.Greater(t, score.Breakdown.Total, 0.0)
	assert.Greater(t, score.Breakdown.Question, 0.0, "a question mark earns the question component")
	assert.Greater(t, score.Breakdown.Hashtags, 0.0)
}

func TestScoreContentRefusesBlockedText(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.ScoreContent,
		jsonRequest(http.MethodPost, "/v1/content/score", `{"text":"a post glorifying violence"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "failed the safety check")
}

func TestQuotaReportShape(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.Quotas.RecordAttempt(ctx, "anthropic", true, "")
	s.Quotas.RecordAttempt(ctx, "anthropic", true, "")
	s.Quotas.RecordAttempt(ctx, "mystery", false, "boom")

	rec, env := invoke(t, s.GetQuotas, httptest.NewRequest(http.MethodGet, "/v1/quotas", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var report model.QuotaReport
	require.NoError(t, json.Unmarshal(env.Result, &report))
	assert.Equal(t, ledger.DayKey(time.Now()), report.Day)

	names := make([]string, 0, len(report.Services))
	byName := make(map[string]model.QuotaStatus)
	for _, status := range report.Services {
		names = append(names, status.Service)
		byName[status.Service] = status
	}

	// Configured services and counted services both appear, sorted by name.
	assert.Equal(t, []string{"anthropic", "gemini", "huggingface", "mystery", "news"}, names)

	anthropic := byName["anthropic"]
	assert.Equal(t, int64(2), anthropic.Success)
	require.NotNil(t, anthropic.Ceiling)
	assert.Equal(t, 10, *anthropic.Ceiling)
	require.NotNil(t, anthropic.Remaining)
	assert.Equal(t, int64(8), *anthropic.Remaining)
	assert.True(t, anthropic.Eligible)

	// A counted service with no configured ceiling is always eligible.
	mystery := byName["mystery"]
	assert.Equal(t, int64(1), mystery.Failure)
	assert.Nil(t, mystery.Ceiling)
	assert.Nil(t, mystery.Remaining)
	assert.True(t, mystery.Eligible)
}

func TestQuotaReportMarksExhaustedServices(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		s.Quotas.RecordAttempt(ctx, "anthropic", true, "")
	}

	_, env := invoke(t, s.GetQuotas, httptest.NewRequest(http.MethodGet, "/v1/quotas", nil))

	var report model.QuotaReport
	require.NoError(t, json.Unmarshal(env.Result, &report))
	for _, status := range report.Services {
		if status.Service == "anthropic" {
			assert.False(t, status.Eligible)
			require.NotNil(t, status.Remaining)
			assert.Zero(t, *status.Remaining)
		}
	}
}

func TestFeedbackIsAcceptedWithoutADatabase(t *testing.T) {
	s := newTestServer(t)

	body := `{"topic":"fintech","style":"professional","rating":4,"comments":"solid draft"}`
	rec, env := invoke(t, s.SubmitFeedback, jsonRequest(http.MethodPost, "/v1/feedback", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	var msg string
	require.NoError(t, json.Unmarshal(env.Result, &msg))
	assert.Equal(t, "thanks for the feedback", msg)
}

func TestFeedbackValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.SubmitFeedback,
		jsonRequest(http.MethodPost, "/v1/feedback", `{"topic":"fintech","rating":6}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "between 1 and 5")
}

func TestFeedbackSummaryRequiresADatabase(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.FeedbackSummary, httptest.NewRequest(http.MethodGet, "/v1/feedback/summary", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrStorageNotConfigured.Error(), env.Error)
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.GetAnalytics, httptest.NewRequest(http.MethodGet, "/v1/analytics", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrNotAuthenticated.Error(), env.Error)
}

func TestAnalyticsRequiresADatabase(t *testing.T) {
	s := newTestServer(t)
	token, _, err := s.Sessions.Create(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics", nil)
	req.Header.Set(adminTokenHeader, token)
	rec, env := invoke(t, s.GetAnalytics, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrStorageNotConfigured.Error(), env.Error)
}

func TestAdminLoginLifecycle(t *testing.T) {
	s := newTestServer(t)

	// The wrong password is refused.
	rec, env := invoke(t, s.AdminLogin,
		jsonRequest(http.MethodPost, "/v1/admin/sessions", `{"password":"guess"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "wrong password", env.Error)

	// The right password starts a session.
	rec, env = invoke(t, s.AdminLogin,
		jsonRequest(http.MethodPost, "/v1/admin/sessions", `{"password":"swordfish"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var session AdminSessionInfo
	require.NoError(t, json.Unmarshal(env.Result, &session))
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.True(t, s.Sessions.Valid(context.Background(), session.Token))

	// Logging out ends the session.
	logout := httptest.NewRequest(http.MethodDelete, "/v1/admin/sessions", nil)
	logout.Header.Set(adminTokenHeader, session.Token)
	rec, _ = invoke(t, s.AdminLogout, logout)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.Sessions.Valid(context.Background(), session.Token))
}

func TestAdminLoginRefusedWhenNotConfigured(t *testing.T) {
	s := newTestServer(t)
	s.Spec.AdminPassword = ""

	rec, env := invoke(t, s.AdminLogin,
		jsonRequest(http.MethodPost, "/v1/admin/sessions", `{"password":"anything"}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrAdminNotConfigured.Error(), env.Error)
}

func TestAdminLogoutRequiresAToken(t *testing.T) {
	s := newTestServer(t)

	rec, env := invoke(t, s.AdminLogout, httptest.NewRequest(http.MethodDelete, "/v1/admin/sessions", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrNotAuthenticated.Error(), env.Error)
}

func TestSecurityEventsGuardAndStorage(t *testing.T) {
	s := newTestServer(t)

	// No token at all.
	rec, _ := invoke(t, s.SecurityEvents, httptest.NewRequest(http.MethodGet, "/v1/admin/security-events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A garbage token is refused without a database lookup.
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/security-events", nil)
	req.Header.Set(adminTokenHeader, "not-a-token")
	rec, _ = invoke(t, s.SecurityEvents, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A live session gets through the guard but finds no storage.
	token, _, err := s.Sessions.Create(req.Context())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/security-events", nil)
	req.Header.Set(adminTokenHeader, token)
	rec, env := invoke(t, s.SecurityEvents, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrStorageNotConfigured.Error(), env.Error)
}

func TestAdminAlertsReportQuotaConditions(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// Exhaust anthropic and push gemini past the warning fraction.
	for i := 0; i < 10; i++ {
		s.Quotas.RecordAttempt(ctx, "anthropic", true, "")
	}
	for i := 0; i < 80; i++ {
		s.Quotas.RecordAttempt(ctx, "gemini", true, "")
	}

	token, _, err := s.Sessions.Create(ctx)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/alerts", nil)
	req.Header.Set(adminTokenHeader, token)
	rec, env := invoke(t, s.AdminAlerts, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var firing []alerts.Alert
	require.NoError(t, json.Unmarshal(env.Result, &firing))
	require.Len(t, firing, 2)
	assert.Equal(t, "quota_exhausted", firing[0].Condition)
	assert.Equal(t, alerts.LevelCritical, firing[0].Level)
	assert.Contains(t, firing[0].Message, "anthropic")
	assert.Equal(t, "quota_nearly_exhausted", firing[1].Condition)
	assert.Contains(t, firing[1].Message, "gemini")
}

func TestTrendingTopics(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"hits":[
			{"title":"Postgres performance tuning guide","points":150,"num_comments":40,"objectID":"1"},
			{"title":"Kubernetes operators explained","points":90,"num_comments":12,"objectID":"2"}
		]}`))
	}))
	defer server.Close()

	s := newTestServer(t)
	s.News = research.NewNews(nil, sources.NewHackerNews(server.URL, time.Second), nil)

	rec, env := invoke(t, s.TrendingTopics, httptest.NewRequest(http.MethodGet, "/v1/topics/trending?limit=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var topics []research.TrendingTopic
	require.NoError(t, json.Unmarshal(env.Result, &topics))
	assert.Len(t, topics, 1)

	// The second call is served from the cache.
	invoke(t, s.TrendingTopics, httptest.NewRequest(http.MethodGet, "/v1/topics/trending", nil))
	assert.Equal(t, 1, requests)

	// refresh=true drops the cache and fetches again.
	invoke(t, s.TrendingTopics, httptest.NewRequest(http.MethodGet, "/v1/topics/trending?refresh=true", nil))
	assert.Equal(t, 2, requests)
}

func TestTrendingTopicsValidatesTheLimit(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/v1/topics/trending?limit=0",
		"/v1/topics/trending?limit=11",
		"/v1/topics/trending?limit=many",
	} {
		rec, env := invoke(t, s.TrendingTopics, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, env.Error, "limit")
	}
}
