package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ProgressService tracks per-learner lesson completion.
type ProgressService interface {
	// CompleteLesson records a completion. Repeated calls are idempotent.
	CompleteLesson(ctx context.Context, userID, lessonID string) error
	CourseProgress(ctx context.Context, userID, courseID string) (dto.CourseProgressResponse, error)
}

type progressService struct {
	progress repository.ProgressRepository
	lessons  repository.LessonRepository
	modules  repository.ModuleRepository
	courses  repository.CourseRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewProgressService constructs a ProgressService instance. cache may be nil
// to disable progress caching.
func NewProgressService(
	progress repository.ProgressRepository,
	lessons repository.LessonRepository,
	modules repository.ModuleRepository,
	courses repository.CourseRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ProgressService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &progressService{
		progress: progress,
		lessons:  lessons,
		modules:  modules,
		courses:  courses,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "progress_service").Logger(),
		now:      time.Now,
	}
}

func progressCacheKey(userID, courseID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, courseID)
}

func (s *progressService) CompleteLesson(ctx context.Context, userID, lessonID string) error {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}

	record := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: s.now(),
	}
	if err := s.progress.MarkComplete(ctx, &record); err != nil {
		return err
	}

	s.invalidate(ctx, userID, lesson.ModuleID)

	return nil
}

// invalidate drops the cached course summary after a completion. Cache
// trouble is logged and swallowed: the summary recomputes on next read.
func (s *progressService) invalidate(ctx context.Context, userID, moduleID string) {
	if s.cache == nil {
		return
	}

	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		s.logger.Warn().Err(err).Str("module_id", moduleID).Msg("progress cache invalidation skipped")
		return
	}

	if err := s.cache.Del(ctx, progressCacheKey(userID, module.CourseID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("course_id", module.CourseID).Msg("progress cache delete failed")
	}
}

func (s *progressService) CourseProgress(ctx context.Context, userID, courseID string) (dto.CourseProgressResponse, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, progressCacheKey(userID, courseID)).Bytes()
		if err == nil {
			var cached dto.CourseProgressResponse
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("course_id", courseID).Msg("progress cache read failed")
		}
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrCourseNotFound
		}
		return dto.CourseProgressResponse{}, err
	}

	total, err := s.lessons.CountByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	completed, err := s.progress.CountCompletedByCourse(ctx, userID, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	response := dto.CourseProgressResponse{
		CourseID:         courseID,
		CompletedLessons: int(completed),
		TotalLessons:     int(total),
	}
	if total > 0 {
		response.CompletionRate = math.Round(float64(completed)/float64(total)*1000) / 10
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, progressCacheKey(userID, courseID), encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("course_id", courseID).Msg("progress cache write failed")
			}
		}
	}

	return response, nil
}
