package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps daily counters in process memory, guarded by a mutex. Only the
// current day's counters are retained; a new day supersedes the prior one. The
// counters reset when the process restarts, which is a documented limitation of
// this backend.
type MemoryStore struct {
	mu     sync.Mutex
	day    string
	counts map[string]Counts
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts: make(map[string]Counts),
	}
}

// rollover discards counters once the day changes. Must be called with the lock held.
func (s *MemoryStore) rollover(day string) {
	if s.day != day {
		s.day = day
		s.counts = make(map[string]Counts)
	}
}

func (s *MemoryStore) Increment(ctx context.Context, service string, day time.Time, success bool, errDetail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover(DayKey(day))

	c := s.counts[service]
	if success {
		c.Success++
	} else {
		c.Failure++
	}
	s.counts[service] = c

	return nil
}

func (s *MemoryStore) Counts(ctx context.Context, day time.Time) (map[string]Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover(DayKey(day))

	snapshot := make(map[string]Counts, len(s.counts))
	for service, c := range s.counts {
		snapshot[service] = c
	}
	return snapshot, nil
}
