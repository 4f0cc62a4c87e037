package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// ImportHandler exposes the bulk course import endpoint.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler constructs the handler.
func NewImportHandler(svc service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: svc,
		logger:  logger.With().Str("handler", "import").Logger(),
	}
}

// Register mounts the import route onto the given router.
func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("/courses/import", h.Import)
}

// Import handles POST /courses/import. The raw body is validated against
// the import schema before anything is persisted; item-level failures are
// reported in the response rather than aborting the run.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	report, err := h.service.Import(c.UserContext(), c.Body())
	if err != nil {
		if errors.Is(err, service.ErrInvalidImport) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("course import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendJSON(c, fiber.StatusCreated, report)
}
