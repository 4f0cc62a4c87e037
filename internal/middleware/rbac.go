package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brightpath-labs/cbt-api/internal/utils"
)

// Role constants recognised by the API.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := ""
		if value := c.Locals("user_role"); value != nil {
			if s, ok := value.(string); ok {
				role = strings.ToLower(strings.TrimSpace(s))
			}
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
