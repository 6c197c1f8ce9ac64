// Package ledger tracks per-service daily call counts against configured ceilings.
//
// The ceilings are a soft usage cap rather than a security boundary, so the ledger
// never raises store failures to its callers: eligibility checks fail open and
// recording errors are logged and dropped.
package ledger

import (
	"context"
	"time"

	"github.com/contentpilot/cps/logging"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "ledger"})

const dayLayout = "2006-01-02"

// Counts holds the success and failure tallies for one service on one day.
type Counts struct {
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

// Store persists per-service daily counters. Increment must be atomic with
// respect to concurrent callers of the same store.
type Store interface {

	// Increment adds one success or failure to the counters for the service on the
	// given day, creating the day's record if it is absent.
	Increment(ctx context.Context, service string, day time.Time, success bool, errDetail string) error

	// Counts returns the counters for every service on the given day.
	Counts(ctx context.Context, day time.Time) (map[string]Counts, error)
}

// Event is the telemetry record emitted after every recorded attempt.
type Event struct {
	Service     string    `json:"service"`
	Timestamp   time.Time `json:"timestamp"`
	Success     bool      `json:"success"`
	ErrorDetail string    `json:"error_detail,omitempty"`
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher registers a callback invoked after every recorded attempt.
func WithPublisher(publish func(Event)) Option {
	return func(l *Ledger) { l.publish = publish }
}

// WithClock overrides the ledger's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger answers daily eligibility questions and records call outcomes. Days are
// reckoned in the process-local time zone.
type Ledger struct {
	store    Store
	ceilings map[string]int
	publish  func(Event)
	now      func() time.Time
}

// New creates a Ledger over the given store and per-service daily ceilings.
// Services without a configured ceiling are always eligible.
func New(store Store, ceilings map[string]int, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		ceilings: ceilings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DayKey formats a time as the calendar-day key used by the ledger stores.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// Eligible reports whether today's successful-call count for the service is still
// strictly below its ceiling. It fails open: a store error logs a warning and
// counts as eligible.
func (l *Ledger) Eligible(ctx context.Context, service string) bool {
	ceiling, ok := l.ceilings[service]
	if !ok {
		return true
	}

	counts, err := l.store.Counts(ctx, l.now())
	if err != nil {
		log.Warnf("quota store unavailable, treating %s as eligible: %s", service, err.Error())
		return true
	}

	return counts[service].Success < int64(ceiling)
}

// RecordAttempt records the final outcome of one service invocation, creating the
// day's record if it is absent. Store failures are logged and swallowed.
func (l *Ledger) RecordAttempt(ctx context.Context, service string, success bool, errDetail string) {
	now := l.now()

	if err := l.store.Increment(ctx, service, now, success, errDetail); err != nil {
		log.Warnf("unable to record a call to %s: %s", service, err.Error())
	}

	if l.publish != nil {
		l.publish(Event{
			Service:     service,
			Timestamp:   now,
			Success:     success,
			ErrorDetail: errDetail,
		})
	}
}

// CountsToday returns a read-only snapshot of today's counters for telemetry. A
// store error logs a warning and yields an empty snapshot.
func (l *Ledger) CountsToday(ctx context.Context) map[string]Counts {
	counts, err := l.store.Counts(ctx, l.now())
	if err != nil {
		log.Warnf("quota store unavailable, returning an empty usage snapshot: %s", err.Error())
		return map[string]Counts{}
	}
	return counts
}

// Ceiling returns the configured daily ceiling for a service, along with a flag
// indicating whether one is configured at all.
func (l *Ledger) Ceiling(service string) (int, bool) {
	ceiling, ok := l.ceilings[service]
	return ceiling, ok
}
