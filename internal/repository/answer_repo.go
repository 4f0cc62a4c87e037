package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// AnswerRepository defines persistence operations for per-attempt answers.
type AnswerRepository interface {
	BulkCreate(ctx context.Context, answers []models.Answer) error
	CountByAttempt(ctx context.Context, attemptID string) (int64, error)
	ListByAttempt(ctx context.Context, attemptID string) ([]models.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository instantiates the repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) BulkCreate(ctx context.Context, answers []models.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&answers).Error
}

func (r *answerRepository) CountByAttempt(ctx context.Context, attemptID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("attempt_id = ?", attemptID).
		Count(&count).Error
	return count, err
}

func (r *answerRepository) ListByAttempt(ctx context.Context, attemptID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}

	return answers, nil
}
