package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// AssessmentRepository defines persistence operations for assessments and
// their questions and options.
type AssessmentRepository interface {
	GetByID(ctx context.Context, id string) (models.Assessment, error)
	CountByModule(ctx context.Context, moduleID string) (int64, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error

	QuestionIDs(ctx context.Context, assessmentID string) ([]string, error)
	CountQuestions(ctx context.Context, assessmentID string) (int64, error)
	GetQuestion(ctx context.Context, id string) (models.Question, error)
	CreateQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error

	OptionsByQuestionIDs(ctx context.Context, questionIDs []string) ([]models.Option, error)
	OptionsByIDs(ctx context.Context, ids []string) ([]models.Option, error)
	CountOptionsByQuestion(ctx context.Context, questionID string) (int64, error)
	GetOption(ctx context.Context, id string) (models.Option, error)
	CreateOption(ctx context.Context, option *models.Option) error
	UpdateOption(ctx context.Context, option *models.Option) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates a GORM-backed repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) GetByID(ctx context.Context, id string) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).First(&assessment, "id = ?", id).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) CountByModule(ctx context.Context, moduleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error
	return count, err
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

func (r *assessmentRepository) QuestionIDs(ctx context.Context, assessmentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("assessment_id = ?", assessmentID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *assessmentRepository) CountQuestions(ctx context.Context, assessmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error
	return count, err
}

func (r *assessmentRepository) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *assessmentRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *assessmentRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *assessmentRepository) OptionsByQuestionIDs(ctx context.Context, questionIDs []string) ([]models.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	var options []models.Option
	err := r.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Find(&options).Error
	if err != nil {
		return nil, err
	}

	return options, nil
}

func (r *assessmentRepository) OptionsByIDs(ctx context.Context, ids []string) ([]models.Option, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var options []models.Option
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&options).Error
	if err != nil {
		return nil, err
	}

	return options, nil
}

func (r *assessmentRepository) CountOptionsByQuestion(ctx context.Context, questionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Option{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

func (r *assessmentRepository) GetOption(ctx context.Context, id string) (models.Option, error) {
	var option models.Option
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		return models.Option{}, err
	}

	return option, nil
}

func (r *assessmentRepository) CreateOption(ctx context.Context, option *models.Option) error {
	return r.db.WithContext(ctx).Create(option).Error
}

func (r *assessmentRepository) UpdateOption(ctx context.Context, option *models.Option) error {
	return r.db.WithContext(ctx).Save(option).Error
}
