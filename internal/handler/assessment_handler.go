package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// AssessmentHandler exposes submission and attempt-history endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(svc service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: svc,
		logger:  logger.With().Str("handler", "assessment").Logger(),
	}
}

// Submit handles POST /assessments/submit.
func (h *AssessmentHandler) Submit(c *fiber.Ctx) error {
	var payload dto.SubmitAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	// An authenticated identity overrides whatever the body claims.
	if userID := userIDFromContext(c); userID != "" {
		payload.UserID = userID
	}

	result, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// ListAttempts handles GET /assessments/:id/attempts.
func (h *AssessmentHandler) ListAttempts(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	attempts, err := h.service.ListAttempts(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, attempts)
}

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidSubmission) || isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	default:
		h.logger.Error().Err(err).Msg("submit failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
