package db

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init establishes the database connection and returns both the raw connection and
// a GORM handle with tracing instrumentation attached.
func Init(databaseURI string) (*sql.DB, *gorm.DB, error) {
	wrapMsg := "unable to establish the database connection"

	gormdb, err := gorm.Open(postgres.Open(databaseURI), &gorm.Config{})
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	if err := gormdb.Use(otelgorm.NewPlugin()); err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	conn, err := gormdb.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	if err := conn.Ping(); err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	return conn, gormdb, nil
}
