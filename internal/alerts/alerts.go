// Package alerts evaluates the operational alert conditions shown on the admin
// dashboard and optionally mails them to the configured recipients.
package alerts

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/contentpilot/cps/config"
	"github.com/contentpilot/cps/internal/db"
	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/model"
	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "alerts"})

// Alert levels.
const (
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Thresholds for the alert conditions.
const (
	quotaWarningFraction   = 0.8
	failedLoginThreshold   = 5
	failedRequestThreshold = 10
	lowRatingThreshold     = 3.0
	lowRatingMinSamples    = 5
	lowRatingWindowDays    = 7
)

// Alert is one triggered alert condition.
type Alert struct {

	// A short identifier for the condition that fired
	Condition string `json:"condition"`

	// The alert level, warning or critical
	Level string `json:"level"`

	// A human readable description of the condition
	Message string `json:"message"`
}

// Evaluator checks the alert conditions against the current service state. The
// database-backed conditions are skipped when no database is configured.
type Evaluator struct {
	spec   *config.Specification
	quotas *ledger.Ledger
	gormdb *gorm.DB
}

// New creates an Evaluator. gormdb may be nil.
func New(spec *config.Specification, quotas *ledger.Ledger, gormdb *gorm.DB) *Evaluator {
	return &Evaluator{spec: spec, quotas: quotas, gormdb: gormdb}
}

// Evaluate returns the alert conditions currently firing, quota alerts first.
func (e *Evaluator) Evaluate(ctx context.Context) []Alert {
	alerts := e.quotaAlerts(ctx)
	if e.gormdb != nil {
		alerts = append(alerts, e.securityAlerts(ctx)...)
		alerts = append(alerts, e.feedbackAlerts(ctx)...)
	}
	return alerts
}

func (e *Evaluator) quotaAlerts(ctx context.Context) []Alert {
	counts := e.quotas.CountsToday(ctx)

	ceilings := e.spec.Ceilings()
	services := make([]string, 0, len(ceilings))
	for service := range ceilings {
		services = append(services, service)
	}
	sort.Strings(services)

	alerts := make([]Alert, 0)
	for _, service := range services {
		ceiling := ceilings[service]
		if ceiling <= 0 {
			continue
		}

		used := counts[service].Success
		if used >= int64(ceiling) {
			alerts = append(alerts, Alert{
				Condition: "quota_exhausted",
				Level:     LevelCritical,
				Message:   fmt.Sprintf("the daily quota for %s is exhausted (%d of %d calls used)", service, used, ceiling),
			})
			continue
		}
		if float64(used)/float64(ceiling) >= quotaWarningFraction {
			alerts = append(alerts, Alert{
				Condition: "quota_nearly_exhausted",
				Level:     LevelWarning,
				Message:   fmt.Sprintf("%s has used %d of %d daily calls", service, used, ceiling),
			})
		}
	}
	return alerts
}

func (e *Evaluator) securityAlerts(ctx context.Context) []Alert {
	log := log.WithFields(logrus.Fields{"context": "security alerts"})

	alerts := make([]Alert, 0)

	failedLogins, err := db.CountRecentSecurityEvents(ctx, e.gormdb, model.EventLoginFailed, time.Hour)
	if err != nil {
		log.Warnf("unable to count failed logins: %s", err.Error())
	} else if failedLogins >= failedLoginThreshold {
		alerts = append(alerts, Alert{
			Condition: "failed_logins",
			Level:     LevelCritical,
			Message:   fmt.Sprintf("%d failed admin logins in the last hour", failedLogins),
		})
	}

	failedRequests, err := db.CountRecentFailedRequests(ctx, e.gormdb, time.Hour)
	if err != nil {
		log.Warnf("unable to count failed requests: %s", err.Error())
	} else if failedRequests >= failedRequestThreshold {
		alerts = append(alerts, Alert{
			Condition: "failed_requests",
			Level:     LevelWarning,
			Message:   fmt.Sprintf("%d failed requests in the last hour", failedRequests),
		})
	}

	return alerts
}

func (e *Evaluator) feedbackAlerts(ctx context.Context) []Alert {
	log := log.WithFields(logrus.Fields{"context": "feedback alerts"})

	summary, err := db.GetFeedbackSummary(ctx, e.gormdb, lowRatingWindowDays)
	if err != nil {
		log.Warnf("unable to summarize feedback: %s", err.Error())
		return nil
	}

	if summary.TotalRatings >= lowRatingMinSamples && summary.AverageRating < lowRatingThreshold {
		return []Alert{{
			Condition: "low_content_rating",
			Level:     LevelWarning,
			Message:   fmt.Sprintf("the average content rating over the last %d days is %.1f", lowRatingWindowDays, summary.AverageRating),
		}}
	}
	return nil
}

// Send mails the alerts to the configured recipients. It is a no-op when SMTP is
// not configured or nothing is firing.
func (e *Evaluator) Send(alerts []Alert) error {
	wrapMsg := "unable to send the alert email"

	if len(alerts) == 0 || e.spec.SMTPHost == "" || len(e.spec.AlertsTo) == 0 {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", e.spec.AlertsFrom)
	fmt.Fprintf(&body, "To: %s\r\n", strings.Join(e.spec.AlertsTo, ", "))
	fmt.Fprintf(&body, "Subject: [%s] %d alert conditions firing\r\n\r\n", config.ServiceName, len(alerts))
	for _, alert := range alerts {
		fmt.Fprintf(&body, "[%s] %s\r\n", alert.Level, alert.Message)
	}

	var auth smtp.Auth
	if e.spec.SMTPUsername != "" {
		auth = smtp.PlainAuth("", e.spec.SMTPUsername, e.spec.SMTPPassword, e.spec.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", e.spec.SMTPHost, e.spec.SMTPPort)
	if err := smtp.SendMail(addr, auth, e.spec.AlertsFrom, e.spec.AlertsTo, []byte(body.String())); err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	log.Infof("mailed %d alerts to %s", len(alerts), strings.Join(e.spec.AlertsTo, ", "))
	return nil
}
