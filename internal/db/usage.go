package db

import (
	"context"
	"time"

	"github.com/contentpilot/cps/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IncrementDailyUsage adds one success or failure to the usage row for the service
// and day, creating the row if it is absent. The increment is written in the upsert
// itself so that concurrent writers never lose updates.
func IncrementDailyUsage(ctx context.Context, db *gorm.DB, service string, day time.Time, success bool, errDetail string) error {
	wrapMsg := "unable to record the service call"

	usage := model.APIUsage{
		ServiceName: service,
		UsageDate:   day,
	}
	if success {
		usage.SuccessCount = 1
	} else {
		usage.FailureCount = 1
	}
	if errDetail != "" {
		usage.LastError = &errDetail
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{
					Name: "service_name",
				},
				{
					Name: "usage_date",
				},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"success_count": gorm.Expr("api_usage.success_count + excluded.success_count"),
				"failure_count": gorm.Expr("api_usage.failure_count + excluded.failure_count"),
				"last_error":    gorm.Expr("coalesce(excluded.last_error, api_usage.last_error)"),
			}),
		}).
		Create(&usage).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// GetDailyUsage returns the usage rows for every service on the given day.
func GetDailyUsage(ctx context.Context, db *gorm.DB, day time.Time) ([]model.APIUsage, error) {
	wrapMsg := "unable to look up the daily usage"

	var usages []model.APIUsage
	err := db.WithContext(ctx).
		Where("usage_date = ?", day.Format("2006-01-02")).
		Find(&usages).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return usages, nil
}

// PruneDailyUsage deletes usage rows for days before the cutoff date and reports
// how many were removed.
func PruneDailyUsage(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	wrapMsg := "unable to prune the daily usage history"

	result := db.WithContext(ctx).
		Where("usage_date < ?", cutoff.Format("2006-01-02")).
		Delete(&model.APIUsage{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, wrapMsg)
	}

	return result.RowsAffected, nil
}
