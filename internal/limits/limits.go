// Package limits enforces per-client request allowances over rolling hourly and
// daily windows. State is in-process only; a brief overrun across multiple
// instances is acceptable for the caps this service applies.
package limits

import (
	"sync"
	"time"
)

// Denial reasons returned by Allow.
const (
	ReasonHourly = "hourly request limit reached"
	ReasonDaily  = "daily request limit reached"
)

// Option adjusts a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter tracks request timestamps per client.
type Limiter struct {
	mutex   sync.Mutex
	hourly  int
	daily   int
	history map[string][]time.Time
	now     func() time.Time
}

// New creates a Limiter with the given allowances. A zero allowance disables the
// corresponding window.
func New(hourly, daily int, options ...Option) *Limiter {
	limiter := &Limiter{
		hourly:  hourly,
		daily:   daily,
		history: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, option := range options {
		option(limiter)
	}
	return limiter
}

// Allow reports whether the client is within its allowance and, if so, records
// the request. Denied requests are not recorded.
func (l *Limiter) Allow(clientID string) (bool, string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	recent := prune(l.history[clientID], now.Add(-24*time.Hour))

	if l.daily > 0 && len(recent) >= l.daily {
		l.history[clientID] = recent
		return false, ReasonDaily
	}

	if l.hourly > 0 {
		hourAgo := now.Add(-time.Hour)
		inHour := 0
		for _, at := range recent {
			if at.After(hourAgo) {
				inHour++
			}
		}
		if inHour >= l.hourly {
			l.history[clientID] = recent
			return false, ReasonHourly
		}
	}

	l.history[clientID] = append(recent, now)
	return true, ""
}

// Remaining reports how many requests the client has left in each window.
func (l *Limiter) Remaining(clientID string) (hourly, daily int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	recent := prune(l.history[clientID], now.Add(-24*time.Hour))
	l.history[clientID] = recent

	hourAgo := now.Add(-time.Hour)
	inHour := 0
	for _, at := range recent {
		if at.After(hourAgo) {
			inHour++
		}
	}

	hourly = l.hourly - inHour
	if hourly < 0 {
		hourly = 0
	}
	daily = l.daily - len(recent)
	if daily < 0 {
		daily = 0
	}
	return hourly, daily
}

// prune drops timestamps at or before the cutoff. The slice is kept in arrival
// order, so the retained suffix is contiguous.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, at := range stamps {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}
