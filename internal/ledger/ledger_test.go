package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Increment(ctx context.Context, service string, day time.Time, success bool, errDetail string) error {
	return errors.New("store down")
}

func (failingStore) Counts(ctx context.Context, day time.Time) (map[string]Counts, error) {
	return nil, errors.New("store down")
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEligibilityExhaustsAtCeiling(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	l := New(NewMemoryStore(), map[string]int{"gemini": 3}, WithClock(fixedClock(day)))

	for i := 0; i < 3; i++ {
		assert.True(t, l.Eligible(ctx, "gemini"), "attempt %d should be eligible", i+1)
		l.RecordAttempt(ctx, "gemini", true, "")
	}

	assert.False(t, l.Eligible(ctx, "gemini"))

	counts := l.CountsToday(ctx)
	assert.Equal(t, int64(3), counts["gemini"].Success)
	assert.Equal(t, int64(0), counts["gemini"].Failure)
}

func TestFailedAttemptsDoNotConsumeQuota(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	l := New(NewMemoryStore(), map[string]int{"huggingface": 2}, WithClock(fixedClock(day)))

	for i := 0; i < 5; i++ {
		l.RecordAttempt(ctx, "huggingface", false, "timeout")
	}

	assert.True(t, l.Eligible(ctx, "huggingface"))
	assert.Equal(t, int64(5), l.CountsToday(ctx)["huggingface"].Failure)
}

func TestEligibilityResetsOnNewDay(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 3, 14, 23, 0, 0, 0, time.Local)
	l := New(NewMemoryStore(), map[string]int{"anthropic": 1}, WithClock(func() time.Time { return current }))

	l.RecordAttempt(ctx, "anthropic", true, "")
	require.False(t, l.Eligible(ctx, "anthropic"))

	// Two hours later it is the next calendar day.
	current = current.Add(2 * time.Hour)

	assert.True(t, l.Eligible(ctx, "anthropic"))
	assert.Empty(t, l.CountsToday(ctx))
}

func TestServicesWithoutCeilingsAreAlwaysEligible(t *testing.T) {
	ctx := context.Background()
	l := New(NewMemoryStore(), map[string]int{"gemini": 1})

	for i := 0; i < 10; i++ {
		l.RecordAttempt(ctx, "news", true, "")
	}

	assert.True(t, l.Eligible(ctx, "news"))
}

func TestLedgerFailsOpenWhenStoreIsDown(t *testing.T) {
	ctx := context.Background()
	l := New(failingStore{}, map[string]int{"gemini": 1})

	assert.True(t, l.Eligible(ctx, "gemini"))
	assert.Empty(t, l.CountsToday(ctx))

	// Recording must swallow the store error rather than surface it.
	assert.NotPanics(t, func() {
		l.RecordAttempt(ctx, "gemini", true, "")
	})
}

func TestPublisherReceivesUsageEvents(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

	var events []Event
	l := New(
		NewMemoryStore(),
		map[string]int{"gemini": 5},
		WithClock(fixedClock(day)),
		WithPublisher(func(e Event) { events = append(events, e) }),
	)

	l.RecordAttempt(ctx, "gemini", true, "")
	l.RecordAttempt(ctx, "gemini", false, "rate limited")

	require.Len(t, events, 2)
	assert.Equal(t, "gemini", events[0].Service)
	assert.True(t, events[0].Success)
	assert.False(t, events[1].Success)
	assert.Equal(t, "rate limited", events[1].ErrorDetail)
}

func TestCountsTodayReturnsACopy(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	l := New(NewMemoryStore(), map[string]int{"gemini": 5}, WithClock(fixedClock(day)))

	l.RecordAttempt(ctx, "gemini", true, "")

	snapshot := l.CountsToday(ctx)
	snapshot["gemini"] = Counts{Success: 99}

	assert.Equal(t, int64(1), l.CountsToday(ctx)["gemini"].Success)
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	path := filepath.Join(t.TempDir(), "usage.jsonl")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Increment(ctx, "gemini", day, true, ""))
	require.NoError(t, store.Increment(ctx, "gemini", day, true, ""))
	require.NoError(t, store.Increment(ctx, "anthropic", day, false, "auth failed"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.Counts(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["gemini"].Success)
	assert.Equal(t, int64(1), counts["anthropic"].Failure)
}

func TestFileStoreSkipsCorruptLines(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	path := filepath.Join(t.TempDir(), "usage.jsonl")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Increment(ctx, "gemini", day, true, ""))
	require.NoError(t, store.Close())

	// Simulate a torn write at the tail of the file.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"service":"gem`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.Counts(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["gemini"].Success)
}

func TestMemoryStoreKeepsOnlyTheCurrentDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	monday := time.Date(2026, 3, 16, 9, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)

	require.NoError(t, store.Increment(ctx, "gemini", monday, true, ""))

	counts, err := store.Counts(ctx, tuesday)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
