package db

import (
	"context"
	"time"

	"github.com/contentpilot/cps/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SaveFeedback stores one content rating.
func SaveFeedback(ctx context.Context, db *gorm.DB, feedback *model.Feedback) error {
	wrapMsg := "unable to save the feedback"

	if err := db.WithContext(ctx).Create(feedback).Error; err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// GetFeedbackSummary aggregates the ratings submitted within the trailing window.
func GetFeedbackSummary(ctx context.Context, db *gorm.DB, days int) (*model.FeedbackSummary, error) {
	wrapMsg := "unable to summarize the feedback"

	cutoff := time.Now().AddDate(0, 0, -days)

	type ratingCount struct {
		Rating int
		Count  int64
	}
	var rows []ratingCount
	err := db.WithContext(ctx).
		Model(&model.Feedback{}).
		Select("rating, count(*) as count").
		Where("created_at >= ?", cutoff).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	summary := &model.FeedbackSummary{
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		WindowDays:   days,
	}

	var total, sum int64
	for _, row := range rows {
		summary.Distribution[row.Rating] = row.Count
		total += row.Count
		sum += int64(row.Rating) * row.Count
	}
	summary.TotalRatings = total
	if total > 0 {
		summary.AverageRating = float64(sum) / float64(total)
	}

	return summary, nil
}
