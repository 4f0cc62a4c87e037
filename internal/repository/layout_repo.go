package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// LayoutRepository persists the per-course editor layout record.
type LayoutRepository interface {
	Get(ctx context.Context, courseID string) (models.CourseLayout, error)
	Upsert(ctx context.Context, layout *models.CourseLayout) error
}

type layoutRepository struct {
	db *gorm.DB
}

// NewLayoutRepository instantiates the repository.
func NewLayoutRepository(db *gorm.DB) LayoutRepository {
	return &layoutRepository{db: db}
}

func (r *layoutRepository) Get(ctx context.Context, courseID string) (models.CourseLayout, error) {
	var layout models.CourseLayout
	if err := r.db.WithContext(ctx).First(&layout, "course_id = ?", courseID).Error; err != nil {
		return models.CourseLayout{}, err
	}

	return layout, nil
}

func (r *layoutRepository) Upsert(ctx context.Context, layout *models.CourseLayout) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"positions", "updated_at"}),
		}).
		Create(layout).Error
}
