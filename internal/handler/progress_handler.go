package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// ProgressHandler exposes lesson completion endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(svc service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: svc,
		logger:  logger.With().Str("handler", "progress").Logger(),
	}
}

// Register mounts the progress routes onto the given router. All routes
// require an authenticated user.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Post("/progress/lessons/:id/complete", h.CompleteLesson)
	router.Get("/progress/courses/:id", h.CourseProgress)
}

// CompleteLesson handles POST /lessons/:id/complete.
func (h *ProgressHandler) CompleteLesson(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.service.CompleteLesson(c.UserContext(), userID, c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CourseProgress handles GET /courses/:id/progress.
func (h *ProgressHandler) CourseProgress(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.CourseProgress(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, response)
}

func (h *ProgressHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	default:
		h.logger.Error().Err(err).Msg("progress operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
