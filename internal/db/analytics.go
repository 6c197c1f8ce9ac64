package db

import (
	"context"
	"time"

	"github.com/contentpilot/cps/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetAnalytics aggregates the request and usage telemetry recorded within the
// trailing window.
func GetAnalytics(ctx context.Context, db *gorm.DB, days int) (*model.Analytics, error) {
	wrapMsg := "unable to aggregate the analytics"

	cutoff := time.Now().AddDate(0, 0, -days)
	analytics := &model.Analytics{WindowDays: days}

	requests := func() *gorm.DB {
		return db.WithContext(ctx).
			Model(&model.ClientRequest{}).
			Where("created_at >= ?", cutoff)
	}

	if err := requests().Count(&analytics.TotalRequests).Error; err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	err := requests().
		Distinct("client_id").
		Count(&analytics.UniqueClients).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	var succeeded int64
	if err := requests().Where("success = ?", true).Count(&succeeded).Error; err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if analytics.TotalRequests > 0 {
		analytics.SuccessRate = float64(succeeded) / float64(analytics.TotalRequests)
	}

	err = requests().
		Select("topic, count(*) as count").
		Group("topic").
		Order("count desc").
		Limit(5).
		Scan(&analytics.PopularTopics).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	type serviceTotals struct {
		ServiceName string
		Success     int64
		Failure     int64
	}
	var totals []serviceTotals
	err = db.WithContext(ctx).
		Model(&model.APIUsage{}).
		Select("service_name, sum(success_count) as success, sum(failure_count) as failure").
		Where("usage_date >= ?", cutoff.Format("2006-01-02")).
		Group("service_name").
		Order("service_name").
		Scan(&totals).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	for _, t := range totals {
		rate := model.ServiceRate{
			ServiceName: t.ServiceName,
			Success:     t.Success,
			Failure:     t.Failure,
		}
		if total := t.Success + t.Failure; total > 0 {
			rate.SuccessRate = float64(t.Success) / float64(total)
		}
		analytics.ServiceRates = append(analytics.ServiceRates, rate)
	}

	err = requests().
		Select("to_char(created_at, 'YYYY-MM-DD') as day, count(*) as count").
		Group("day").
		Order("day").
		Scan(&analytics.DailyBreakdown).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return analytics, nil
}

// PruneTelemetry deletes telemetry rows older than the retention window. The
// deletions run in one transaction so a partial prune never happens.
func PruneTelemetry(ctx context.Context, gormdb *gorm.DB, retentionDays int) (int64, error) {
	wrapMsg := "unable to prune the telemetry tables"

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var pruned int64

	err := gormdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("created_at < ?", cutoff).Delete(&model.ClientRequest{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected

		res = tx.Where("created_at < ?", cutoff).Delete(&model.SecurityEvent{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected

		res = tx.Where("created_at < ?", cutoff).Delete(&model.Feedback{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected

		res = tx.Where("usage_date < ?", cutoff.Format("2006-01-02")).Delete(&model.APIUsage{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return pruned, nil
}
