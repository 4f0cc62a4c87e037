package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// AttemptRepository defines persistence operations for attempts.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	// Finalize writes score, passed and the submission timestamp. Called
	// exactly once per attempt in the success path.
	Finalize(ctx context.Context, id string, score int, passed bool, submittedAt time.Time) error
	GetByID(ctx context.Context, id string) (models.Attempt, error)
	ListByAssessmentAndUser(ctx context.Context, assessmentID, userID string) ([]models.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) Finalize(ctx context.Context, id string, score int, passed bool, submittedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":        score,
			"passed":       passed,
			"submitted_at": submittedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attemptRepository) GetByID(ctx context.Context, id string) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return models.Attempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) ListByAssessmentAndUser(ctx context.Context, assessmentID, userID string) ([]models.Attempt, error) {
	var attempts []models.Attempt
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}
