package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-tracker/internal/api/http/handlers"
	"github.com/spec-kit/project-tracker/internal/auth"
	"github.com/spec-kit/project-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Router-level role guards only
// short-circuit; the services hold the authoritative checks.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Put("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.ChangeRole)
	users.Put("/:id/active", auth.RequireRole(domain.RoleAdmin), cfg.Users.SetActive)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.Delete)

	projects := api.Group("/projects", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	projects.Post("/", cfg.Projects.Create)
	projects.Get("/", cfg.Projects.List)
	projects.Get("/:id", cfg.Projects.Get)
	projects.Patch("/:id", cfg.Projects.Update)
	projects.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Projects.Delete)
	projects.Get("/:id/stats", cfg.Projects.TicketStats)
	projects.Post("/:id/members", cfg.Projects.AddMember)
	projects.Put("/:id/members/:userId", cfg.Projects.ChangeMemberRole)
	projects.Delete("/:id/members/:userId", cfg.Projects.RemoveMember)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Put("/:id/assignee", cfg.Tickets.Assign)
	tickets.Delete("/:id/assignee", cfg.Tickets.Unassign)
	tickets.Get("/:id/history", cfg.Tickets.StatusHistory)
}
