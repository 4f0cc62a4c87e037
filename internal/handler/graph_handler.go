package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/service"
	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// GraphHandler exposes the admin course editor endpoints.
type GraphHandler struct {
	service service.GraphService
	logger  zerolog.Logger
}

// NewGraphHandler constructs the handler.
func NewGraphHandler(svc service.GraphService, logger zerolog.Logger) *GraphHandler {
	return &GraphHandler{
		service: svc,
		logger:  logger.With().Str("handler", "graph").Logger(),
	}
}

// Register mounts the graph editor routes onto the given router.
func (h *GraphHandler) Register(router fiber.Router) {
	router.Get("/courses/:id/graph", h.LoadGraph)
	router.Post("/courses/:id/graph/layout", h.AutoLayout)
	router.Post("/graph/nodes", h.AddNode)
	router.Patch("/graph/nodes/:id", h.UpdateNode)
	router.Delete("/graph/nodes/:id", h.DeleteNode)
}

// LoadGraph handles GET /courses/:id/graph.
func (h *GraphHandler) LoadGraph(c *fiber.Ctx) error {
	response, err := h.service.LoadGraph(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, response)
}

// AutoLayout handles POST /courses/:id/layout. Recomputes and persists node
// positions; the response includes any nodes that could not be placed.
func (h *GraphHandler) AutoLayout(c *fiber.Ctx) error {
	response, err := h.service.AutoLayout(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, response)
}

// AddNode handles POST /nodes.
func (h *GraphHandler) AddNode(c *fiber.Ctx) error {
	var payload dto.AddNodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	node, err := h.service.AddChild(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, node)
}

// UpdateNode handles PATCH /nodes/:id.
func (h *GraphHandler) UpdateNode(c *fiber.Ctx) error {
	var payload dto.UpdateNodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateNode(c.UserContext(), c.Params("id"), payload); err != nil {
		return h.handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNode handles DELETE /nodes/:id?kind=...
func (h *GraphHandler) DeleteNode(c *fiber.Ctx) error {
	kind := c.Query("kind")
	if kind == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "kind query parameter is required")
	}

	if err := h.service.DeleteNode(c.UserContext(), c.Params("id"), kind); err != nil {
		return h.handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GraphHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNodeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "node not found")
	case errors.Is(err, service.ErrUnsupportedNode),
		errors.Is(err, service.ErrInvalidNode),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("graph operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
