package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// CourseHandler exposes the learner-facing catalog endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: svc,
		logger:  logger.With().Str("handler", "course").Logger(),
	}
}

// Register mounts the catalog routes onto the given router.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/courses", h.List)
	router.Get("/courses/:id", h.GetTree)
}

// List handles GET /courses. Unpublished courses are included only when
// ?all=true is passed; the admin surface gates that flag behind auth.
func (h *CourseHandler) List(c *fiber.Ctx) error {
	publishedOnly := c.Query("all") != "true"

	courses, err := h.service.List(c.UserContext(), publishedOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("course list failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendJSON(c, fiber.StatusOK, courses)
}

// GetTree handles GET /courses/:id.
func (h *CourseHandler) GetTree(c *fiber.Ctx) error {
	tree, err := h.service.GetTree(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		h.logger.Error().Err(err).Msg("course tree failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendJSON(c, fiber.StatusOK, tree)
}
