package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// GraphRepository applies structural deletes to the content graph. The
// datastore schema carries no automatic cascade for these relations, so
// children are removed before parents, and every cascade runs inside a
// single transaction: a failure rolls the whole cascade back rather than
// leaving orphaned child rows.
type GraphRepository interface {
	DeleteOption(ctx context.Context, id string) error
	DeleteLesson(ctx context.Context, id string) error
	DeleteQuestionCascade(ctx context.Context, id string) error
	DeleteAssessmentCascade(ctx context.Context, id string) error
	DeleteModuleCascade(ctx context.Context, id string) error
}

type graphRepository struct {
	db *gorm.DB
}

// NewGraphRepository instantiates the repository.
func NewGraphRepository(db *gorm.DB) GraphRepository {
	return &graphRepository{db: db}
}

func (r *graphRepository) DeleteOption(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &models.Option{}, id)
}

func (r *graphRepository) DeleteLesson(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &models.Lesson{}, id)
}

func (r *graphRepository) DeleteQuestionCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.Question{}, id)
	})
}

func (r *graphRepository) DeleteAssessmentCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAssessmentChildren(tx, []string{id}); err != nil {
			return err
		}
		return deleteByID(tx, &models.Assessment{}, id)
	})
}

func (r *graphRepository) DeleteModuleCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}

		var assessmentIDs []string
		if err := tx.Model(&models.Assessment{}).
			Where("module_id = ?", id).
			Pluck("id", &assessmentIDs).Error; err != nil {
			return err
		}

		if err := deleteAssessmentChildren(tx, assessmentIDs); err != nil {
			return err
		}

		if len(assessmentIDs) > 0 {
			if err := tx.Where("id IN ?", assessmentIDs).Delete(&models.Assessment{}).Error; err != nil {
				return err
			}
		}

		return deleteByID(tx, &models.CourseModule{}, id)
	})
}

// deleteAssessmentChildren removes all questions under the given assessments
// together with their options.
func deleteAssessmentChildren(tx *gorm.DB, assessmentIDs []string) error {
	if len(assessmentIDs) == 0 {
		return nil
	}

	var questionIDs []string
	if err := tx.Model(&models.Question{}).
		Where("assessment_id IN ?", assessmentIDs).
		Pluck("id", &questionIDs).Error; err != nil {
		return err
	}

	if len(questionIDs) == 0 {
		return nil
	}

	if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Option{}).Error; err != nil {
		return err
	}

	return tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error
}

func deleteByID(tx *gorm.DB, model interface{}, id string) error {
	result := tx.Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
