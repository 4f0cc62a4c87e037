package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// maxVideoUploadBytes caps the in-memory upload size.
const maxVideoUploadBytes = 512 << 20

// LessonHandler exposes lesson asset endpoints.
type LessonHandler struct {
	service service.AssetService
	logger  zerolog.Logger
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(svc service.AssetService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		service: svc,
		logger:  logger.With().Str("handler", "lesson").Logger(),
	}
}

// Register mounts the public lesson routes onto the given router.
func (h *LessonHandler) Register(router fiber.Router) {
	router.Get("/lessons/:id/asset-url", h.AssetURL)
}

// RegisterAdmin mounts the upload route onto the admin router.
func (h *LessonHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/lessons/:id/video", h.UploadVideo)
}

// AssetURL handles GET /lessons/:id/asset-url.
func (h *LessonHandler) AssetURL(c *fiber.Ctx) error {
	response, err := h.service.ResolveAssetURL(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, response)
}

// UploadVideo handles POST /lessons/:id/video with a multipart file field
// named "video".
func (h *LessonHandler) UploadVideo(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "video file is required")
	}
	if fileHeader.Size > maxVideoUploadBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "video exceeds the upload size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read uploaded file")
	}

	response, err := h.service.UploadVideo(c.UserContext(), c.Params("id"), fileHeader.Filename, data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, response)
}

func (h *LessonHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrNoVideo):
		return utils.SendError(c, fiber.StatusNotFound, "lesson has no video")
	case errors.Is(err, service.ErrUnsupportedMedia):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "object storage unavailable")
	default:
		h.logger.Error().Err(err).Msg("lesson asset operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
