package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// HealthHandler reports service liveness and dependency readiness.
type HealthHandler struct {
	db    *gorm.DB
	cache *redis.Client
}

// NewHealthHandler constructs the handler. cache may be nil.
func NewHealthHandler(db *gorm.DB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Register mounts the health routes onto the given router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Live)
	router.Get("/ready", h.Ready)
}

// Live handles GET /health.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return utils.SendJSON(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}

// Ready handles GET /ready: the database must answer, the cache is optional.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	if err := sqlDB.PingContext(c.UserContext()); err != nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(c.UserContext()).Err(); err != nil {
			cacheStatus = "unavailable"
		}
	}

	return utils.SendJSON(c, fiber.StatusOK, fiber.Map{
		"status": "ok",
		"cache":  cacheStatus,
	})
}
