package db

import (
	"context"
	"time"

	"github.com/contentpilot/cps/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreateAdminSession inserts a new session row and returns it with its generated
// token.
func CreateAdminSession(ctx context.Context, db *gorm.DB, expiresAt time.Time) (*model.AdminSession, error) {
	wrapMsg := "unable to create the admin session"

	session := model.AdminSession{ExpiresAt: expiresAt}
	if err := db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &session, nil
}

// AdminSessionValid reports whether the token names an unexpired session. Expired
// sessions are purged on the way through, so the table never accumulates them.
func AdminSessionValid(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	wrapMsg := "unable to look up the admin session"

	if err := PurgeExpiredSessions(ctx, db); err != nil {
		return false, err
	}

	var session model.AdminSession
	err := db.WithContext(ctx).
		Where("id = ?", token).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	return true, nil
}

// DeleteAdminSession removes a session, ending it immediately.
func DeleteAdminSession(ctx context.Context, db *gorm.DB, token string) error {
	wrapMsg := "unable to delete the admin session"

	err := db.WithContext(ctx).
		Where("id = ?", token).
		Delete(&model.AdminSession{}).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// PurgeExpiredSessions removes every session whose expiration time has passed.
func PurgeExpiredSessions(ctx context.Context, db *gorm.DB) error {
	wrapMsg := "unable to purge the expired admin sessions"

	err := db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.AdminSession{}).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}
