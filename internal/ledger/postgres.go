package ledger

import (
	"context"
	"time"

	"github.com/contentpilot/cps/internal/db"
	"gorm.io/gorm"
)

// PostgresStore persists counters one row per service and day in the api_usage
// table, relying on the database's atomic upsert so that concurrent processes
// never lose updates. Counters survive restarts.
type PostgresStore struct {
	gormdb *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over an established GORM handle.
func NewPostgresStore(gormdb *gorm.DB) *PostgresStore {
	return &PostgresStore{gormdb: gormdb}
}

func (s *PostgresStore) Increment(ctx context.Context, service string, day time.Time, success bool, errDetail string) error {
	return db.IncrementDailyUsage(ctx, s.gormdb, service, day, success, errDetail)
}

func (s *PostgresStore) Counts(ctx context.Context, day time.Time) (map[string]Counts, error) {
	usages, err := db.GetDailyUsage(ctx, s.gormdb, day)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]Counts, len(usages))
	for _, usage := range usages {
		counts[usage.ServiceName] = Counts{
			Success: usage.SuccessCount,
			Failure: usage.FailureCount,
		}
	}
	return counts, nil
}
