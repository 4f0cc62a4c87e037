package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// ProgressRepository defines persistence operations for lesson completion.
type ProgressRepository interface {
	// MarkComplete records a completion, idempotently per user and lesson.
	MarkComplete(ctx context.Context, progress *models.LessonProgress) error
	CountCompletedByCourse(ctx context.Context, userID, courseID string) (int64, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) MarkComplete(ctx context.Context, progress *models.LessonProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(progress).Error
}

func (r *progressRepository) CountCompletedByCourse(ctx context.Context, userID, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lesson_progresses.user_id = ?", userID).
		Where("course_modules.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
