// Package router wires handlers and route-level middleware onto the Fiber app.
package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brightpath-labs/cbt-api/internal/handler"
	"github.com/brightpath-labs/cbt-api/internal/middleware"
	"github.com/brightpath-labs/cbt-api/internal/observability"
)

// Dependencies collects everything the router needs to mount the API.
type Dependencies struct {
	JWTSecret        string
	SubmitRateLimit  int
	SubmitRateWindow time.Duration

	Health     *handler.HealthHandler
	Assessment *handler.AssessmentHandler
	Course     *handler.CourseHandler
	Lesson     *handler.LessonHandler
	Progress   *handler.ProgressHandler
	Graph      *handler.GraphHandler
	Import     *handler.ImportHandler
}

// Register mounts all routes. The public surface lives under /api/v1; the
// editor and import surface under /api/admin requires the admin role.
func Register(app *fiber.App, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1")
	deps.Health.Register(api)
	deps.Course.Register(api)
	deps.Lesson.Register(api)

	// Submission accepts anonymous attempts; a valid token binds the user
	// identity but its absence is not an error.
	api.Post("/assessments/submit",
		middleware.RateLimit("submit", deps.SubmitRateLimit, deps.SubmitRateWindow),
		deps.Assessment.Submit,
	)

	authed := api.Group("", middleware.JWTProtected(deps.JWTSecret))
	authed.Get("/assessments/:id/attempts", deps.Assessment.ListAttempts)
	deps.Progress.Register(authed)

	admin := app.Group("/api/admin",
		middleware.JWTProtected(deps.JWTSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)
	deps.Graph.Register(admin)
	deps.Import.Register(admin)
	deps.Lesson.RegisterAdmin(admin)
}
