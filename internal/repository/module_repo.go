package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// ModuleRepository defines persistence operations for course modules.
type ModuleRepository interface {
	GetByID(ctx context.Context, id string) (models.CourseModule, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseModule, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	Create(ctx context.Context, module *models.CourseModule) error
	Update(ctx context.Context, module *models.CourseModule) error
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository instantiates the repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) GetByID(ctx context.Context, id string) (models.CourseModule, error) {
	var module models.CourseModule
	if err := r.db.WithContext(ctx).First(&module, "id = ?", id).Error; err != nil {
		return models.CourseModule{}, err
	}

	return module, nil
}

func (r *moduleRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	var modules []models.CourseModule
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, created_at ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}

	return modules, nil
}

func (r *moduleRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CourseModule{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *moduleRepository) Create(ctx context.Context, module *models.CourseModule) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *moduleRepository) Update(ctx context.Context, module *models.CourseModule) error {
	return r.db.WithContext(ctx).Save(module).Error
}
