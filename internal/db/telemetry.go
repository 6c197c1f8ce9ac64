package db

import (
	"context"
	"time"

	"github.com/contentpilot/cps/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RecordClientRequest stores one pipeline request for analytics.
func RecordClientRequest(ctx context.Context, db *gorm.DB, request *model.ClientRequest) error {
	wrapMsg := "unable to record the client request"

	if err := db.WithContext(ctx).Create(request).Error; err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// RecordSecurityEvent stores one security event.
func RecordSecurityEvent(ctx context.Context, db *gorm.DB, event *model.SecurityEvent) error {
	wrapMsg := "unable to record the security event"

	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// ListSecurityEvents returns the security events recorded within the trailing
// window, newest first.
func ListSecurityEvents(ctx context.Context, db *gorm.DB, hours int) ([]model.SecurityEvent, error) {
	wrapMsg := "unable to list the security events"

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	var events []model.SecurityEvent
	err := db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at desc").
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return events, nil
}

// CountRecentSecurityEvents counts security events of one type within the trailing
// window. The alert thresholds are evaluated against these counts.
func CountRecentSecurityEvents(ctx context.Context, db *gorm.DB, eventType string, window time.Duration) (int64, error) {
	wrapMsg := "unable to count the recent security events"

	var count int64
	err := db.WithContext(ctx).
		Model(&model.SecurityEvent{}).
		Where("event_type = ? and created_at >= ?", eventType, time.Now().Add(-window)).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return count, nil
}

// CountRecentFailedRequests counts failed client requests within the trailing window.
func CountRecentFailedRequests(ctx context.Context, db *gorm.DB, window time.Duration) (int64, error) {
	wrapMsg := "unable to count the recent failed requests"

	var count int64
	err := db.WithContext(ctx).
		Model(&model.ClientRequest{}).
		Where("success = ? and created_at >= ?", false, time.Now().Add(-window)).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return count, nil
}

// RetentionCutoff returns the moment before which rows fall outside the
// retention window.
func RetentionCutoff(retentionDays int) time.Time {
	return time.Now().AddDate(0, 0, -retentionDays)
}

// PruneClientRequests deletes client request rows older than the cutoff and
// reports how many were removed.
func PruneClientRequests(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	wrapMsg := "unable to prune the client requests"

	result := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.ClientRequest{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, wrapMsg)
	}

	return result.RowsAffected, nil
}

// PruneSecurityEvents deletes security event rows older than the cutoff and
// reports how many were removed.
func PruneSecurityEvents(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	wrapMsg := "unable to prune the security events"

	result := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.SecurityEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, wrapMsg)
	}

	return result.RowsAffected, nil
}
