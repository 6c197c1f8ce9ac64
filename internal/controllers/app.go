// Package controllers contains the HTTP and NATS handlers for the CPS service.
package controllers

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/contentpilot/cps/config"
	"github.com/contentpilot/cps/internal/alerts"
	"github.com/contentpilot/cps/internal/content"
	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/limits"
	"github.com/contentpilot/cps/internal/research"
	"github.com/contentpilot/cps/internal/safety"
	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "controllers"})

// Server carries the shared state for every handler. The database handles are
// nil when no database is configured, in which case the handlers that need one
// degrade or refuse as documented on each endpoint.
type Server struct {
	Router   *echo.Echo
	DB       *sql.DB
	GORMDB   *gorm.DB
	NATSConn *nats.EncodedConn
	Service  string
	Title    string
	Version  string

	Spec     *config.Specification
	Quotas   *ledger.Ledger
	Research *research.Orchestrator
	Content  *content.Orchestrator
	News     *research.News
	Safety   *safety.Checker
	Limits   *limits.Limiter
	Sessions *SessionStore
	Alerts   *alerts.Evaluator
}
