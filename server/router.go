package server

import (
	"github.com/cyverse-de/echo-middleware/v2/redoc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echolog "github.com/spirosoik/echo-logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/contentpilot/cps/internal/controllers"
)

func InitRouter() *echo.Echo {
	log := log.WithFields(logrus.Fields{"context": "router"})

	// Create the web server.
	e := echo.New()

	// Set a custom logger.
	echoLogger := echolog.NewLoggerMiddleware(log)
	e.Logger = echoLogger

	// Add middleware.
	e.Use(otelecho.Middleware("CPS"))
	e.Use(echoLogger.Hook())
	e.Use(middleware.Recover())
	e.Use(redoc.Serve(redoc.Opts{Title: "Content Pilot Service"}))

	return e
}

func registerTopicEndpoints(topics *echo.Group, s *controllers.Server) {
	// Researches a topic.
	topics.POST("/research", s.ResearchTopic)

	// Lists trending topics mined from the forum front page.
	topics.GET("/trending", s.TrendingTopics)
}

func registerContentEndpoints(content *echo.Group, s *controllers.Server) {
	// Generates scored post drafts for a topic.
	content.POST("", s.GenerateContent)

	// Scores caller-provided draft text.
	content.POST("/score", s.ScoreContent)
}

func registerFeedbackEndpoints(feedback *echo.Group, s *controllers.Server) {
	// Records a content rating.
	feedback.POST("", s.SubmitFeedback)

	// Summarizes recent ratings.
	feedback.GET("/summary", s.FeedbackSummary)
}

func registerAdminEndpoints(admin *echo.Group, s *controllers.Server) {
	// Starts an admin session.
	admin.POST("/sessions", s.AdminLogin)

	// Ends the current admin session.
	admin.DELETE("/sessions", s.AdminLogout)

	// Lists recent security events.
	admin.GET("/security-events", s.SecurityEvents)

	// Reports the alert conditions currently firing.
	admin.GET("/alerts", s.AdminAlerts)
}

func RegisterHandlers(s controllers.Server) {

	// The base URL acts as a health check endpoint.
	s.Router.GET("/", s.RootHandler)

	// API version 1 endpoints.
	v1 := s.Router.Group("/v1")
	v1.GET("", s.V1RootHandler)

	topics := v1.Group("/topics")
	registerTopicEndpoints(topics, &s)

	content := v1.Group("/content")
	registerContentEndpoints(content, &s)

	// Reports today's per-service quota standings.
	v1.GET("/quotas", s.GetQuotas)

	feedback := v1.Group("/feedback")
	registerFeedbackEndpoints(feedback, &s)

	// Aggregates request telemetry for the admin dashboard.
	v1.GET("/analytics", s.GetAnalytics)

	admin := v1.Group("/admin")
	registerAdminEndpoints(admin, &s)
}
