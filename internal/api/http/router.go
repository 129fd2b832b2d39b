package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes under /api.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/healthz", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	api.Post("/auth/register", cfg.Auth.Register)
	api.Post("/auth/login", cfg.Auth.Login)
	api.Get("/auth/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	adminOnly := auth.RequireRole(domain.RoleAdmin)

	complaints := api.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("/", cfg.Complaints.Submit)
	complaints.Get("/", cfg.Complaints.List)
	// static paths before :id
	complaints.Get("/stats", adminOnly, cfg.Complaints.Stats)
	complaints.Get("/overdue", adminOnly, cfg.Complaints.Overdue)
	complaints.Get("/navigator-updates", adminOnly, cfg.Complaints.NavigatorUpdates)
	complaints.Get("/dashboard", adminOnly, cfg.Complaints.Dashboard)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Get("/:id/history", cfg.Complaints.History)
	complaints.Patch("/:id/status", auth.RequireRole(domain.RoleAdmin, domain.RoleNavigator), cfg.Complaints.UpdateStatus)
	complaints.Patch("/:id/assign", adminOnly, cfg.Complaints.Assign)
	complaints.Patch("/:id/escalate", adminOnly, cfg.Complaints.Escalate)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, adminOnly)
	users.Get("/navigators", cfg.Users.Navigators)
	users.Get("/admins", cfg.Users.Admins)
}
