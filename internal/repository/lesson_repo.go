package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// LessonRepository defines persistence operations for lessons.
type LessonRepository interface {
	GetByID(ctx context.Context, id string) (models.Lesson, error)
	CountByModule(ctx context.Context, moduleID string) (int64, error)
	// CountByCourse counts lessons across all modules of a course.
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	UpdateVideoRef(ctx context.Context, id, videoRef string) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository instantiates the repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(ctx context.Context, id string) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) CountByModule(ctx context.Context, moduleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error
	return count, err
}

func (r *lessonRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepository) UpdateVideoRef(ctx context.Context, id, videoRef string) error {
	result := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("id = ?", id).
		Update("video_ref", videoRef)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
