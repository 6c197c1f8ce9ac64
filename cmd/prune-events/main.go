package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/contentpilot/cps/internal/db"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultRetentionDays = 90

type Config struct {
	DatabaseURI   string
	RetentionDays int
}

// loadConfig loads configuration settings from the environment. We're using koanf directly here so that the
// configuration files don't have to be present to run the maintenance utility.
func loadConfig() (*Config, error) {
	k := koanf.New(".")

	// Load the configuration settings from the environment.
	err := k.Load(
		env.Provider("CPS_", ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CPS_")), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Verify that the database URI is specified.
	databaseURI := k.String("database.uri")
	if databaseURI == "" {
		return nil, fmt.Errorf("CPS_DATABASE_URI must be defined")
	}

	// Fall back to the default retention window when none is specified.
	retentionDays := k.Int("retention.days")
	if retentionDays == 0 {
		retentionDays = defaultRetentionDays
	}
	if retentionDays < 1 {
		return nil, fmt.Errorf("CPS_RETENTION_DAYS must be a positive number of days")
	}

	return &Config{DatabaseURI: databaseURI, RetentionDays: retentionDays}, nil
}

// pruneEvents removes telemetry, security events, and usage history older than the retention window, along with any
// admin sessions that have already expired.
func pruneEvents(ctx context.Context, tx *gorm.DB, retentionDays int) error {
	cutoff := db.RetentionCutoff(retentionDays)
	fmt.Printf("pruning rows recorded before %s...\n", cutoff.Format("2006-01-02"))

	requests, err := db.PruneClientRequests(ctx, tx, cutoff)
	if err != nil {
		return errors.Wrap(err, "unable to prune the client requests")
	}
	fmt.Printf("removed %d client request rows\n", requests)

	events, err := db.PruneSecurityEvents(ctx, tx, cutoff)
	if err != nil {
		return errors.Wrap(err, "unable to prune the security events")
	}
	fmt.Printf("removed %d security event rows\n", events)

	usages, err := db.PruneDailyUsage(ctx, tx, cutoff)
	if err != nil {
		return errors.Wrap(err, "unable to prune the usage history")
	}
	fmt.Printf("removed %d usage rows\n", usages)

	err = db.PurgeExpiredSessions(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "unable to purge the expired admin sessions")
	}
	fmt.Println("purged the expired admin sessions")

	return nil
}

func main() {

	// Load the configuration.
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("unable to load the configuration: %s", err)
	}

	// Establish the database connection.
	_, gormdb, err := db.Init(cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("unable to connect to the database: %s", err)
	}

	// Run the actual deletions in a transaction.
	err = gormdb.Transaction(func(tx *gorm.DB) error {
		return pruneEvents(context.Background(), tx, cfg.RetentionDays)
	})
	if err != nil {
		log.Fatal(err)
	}
}
