package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

var (
	// ErrLessonNotFound indicates the referenced lesson does not exist.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrNoVideo indicates the lesson carries no video reference.
	ErrNoVideo = errors.New("lesson has no video")
	// ErrStorageUnavailable indicates object storage is not configured.
	ErrStorageUnavailable = errors.New("object storage unavailable")
	// ErrUnsupportedMedia indicates the uploaded file is not a video.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// AssetStore abstracts the object store backing lesson video assets.
type AssetStore interface {
	UploadVideo(ctx context.Context, name string, reader io.Reader) (string, error)
	SignedDownloadURL(publicID string, ttl time.Duration) (string, time.Time, error)
}

// AssetService resolves lesson video references into playable URLs and
// handles video uploads.
type AssetService interface {
	// ResolveAssetURL returns the playable URL for a lesson. External
	// references (absolute URLs) pass through unchanged; stored assets get a
	// time-limited signed URL.
	ResolveAssetURL(ctx context.Context, lessonID string) (dto.LessonAssetURLResponse, error)
	// UploadVideo stores the file and points the lesson's video reference at it.
	UploadVideo(ctx context.Context, lessonID, filename string, data []byte) (dto.LessonAssetURLResponse, error)
}

type assetService struct {
	lessons   repository.LessonRepository
	store     AssetStore
	signedTTL time.Duration
	logger    zerolog.Logger
}

// NewAssetService constructs an AssetService instance. store may be nil when
// object storage is not configured; external video URLs still resolve.
func NewAssetService(lessons repository.LessonRepository, store AssetStore, signedTTL time.Duration, logger zerolog.Logger) AssetService {
	if signedTTL <= 0 {
		signedTTL = 15 * time.Minute
	}

	return &assetService{
		lessons:   lessons,
		store:     store,
		signedTTL: signedTTL,
		logger:    logger.With().Str("component", "asset_service").Logger(),
	}
}

func (s *assetService) ResolveAssetURL(ctx context.Context, lessonID string) (dto.LessonAssetURLResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonAssetURLResponse{}, ErrLessonNotFound
		}
		return dto.LessonAssetURLResponse{}, err
	}

	if lesson.VideoRef == "" {
		return dto.LessonAssetURLResponse{}, ErrNoVideo
	}

	if lesson.HasExternalVideo() {
		return dto.LessonAssetURLResponse{
			URL:    lesson.VideoRef,
			Source: dto.AssetSourceExternal,
		}, nil
	}

	if s.store == nil {
		return dto.LessonAssetURLResponse{}, ErrStorageUnavailable
	}

	url, expiresAt, err := s.store.SignedDownloadURL(lesson.VideoRef, s.signedTTL)
	if err != nil {
		return dto.LessonAssetURLResponse{}, fmt.Errorf("failed to sign asset url: %w", err)
	}

	return dto.LessonAssetURLResponse{
		URL:       url,
		Source:    dto.AssetSourceSigned,
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *assetService) UploadVideo(ctx context.Context, lessonID, filename string, data []byte) (dto.LessonAssetURLResponse, error) {
	if s.store == nil {
		return dto.LessonAssetURLResponse{}, ErrStorageUnavailable
	}

	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonAssetURLResponse{}, ErrLessonNotFound
		}
		return dto.LessonAssetURLResponse{}, err
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "video/") {
		return dto.LessonAssetURLResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, detected.String())
	}

	publicID, err := s.store.UploadVideo(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return dto.LessonAssetURLResponse{}, fmt.Errorf("failed to store video: %w", err)
	}

	if err := s.lessons.UpdateVideoRef(ctx, lessonID, publicID); err != nil {
		return dto.LessonAssetURLResponse{}, err
	}

	url, expiresAt, err := s.store.SignedDownloadURL(publicID, s.signedTTL)
	if err != nil {
		return dto.LessonAssetURLResponse{}, fmt.Errorf("failed to sign asset url: %w", err)
	}

	s.logger.Info().
		Str("lesson_id", lessonID).
		Str("public_id", publicID).
		Str("mime", detected.String()).
		Msg("lesson video uploaded")

	return dto.LessonAssetURLResponse{
		URL:       url,
		Source:    dto.AssetSourceSigned,
		ExpiresAt: &expiresAt,
	}, nil
}
