package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

// CourseService serves the learner-facing catalog.
type CourseService interface {
	List(ctx context.Context, publishedOnly bool) ([]dto.CourseResponse, error)
	GetTree(ctx context.Context, id string) (dto.CourseTreeResponse, error)
}

type courseService struct {
	courses repository.CourseRepository
	logger  zerolog.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses repository.CourseRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		courses: courses,
		logger:  logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, publishedOnly bool) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) GetTree(ctx context.Context, id string) (dto.CourseTreeResponse, error) {
	course, err := s.courses.GetTree(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseTreeResponse{}, ErrCourseNotFound
		}
		return dto.CourseTreeResponse{}, err
	}

	return dto.NewCourseTreeResponse(course), nil
}
