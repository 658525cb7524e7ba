package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nusalink/ftth-helpdesk/internal/api/http/handlers"
	"github.com/nusalink/ftth-helpdesk/internal/auth"
	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	Settings       *handlers.SettingsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAny())

	staff := auth.RequireRole(domain.RoleSuperadmin, domain.RoleAdmin, domain.RoleHelpdesk)
	admins := auth.RequireRole(domain.RoleSuperadmin, domain.RoleAdmin)
	technicians := auth.RequireRole(domain.RoleTechnician)

	users := api.Group("/users")
	users.Post("", admins, cfg.Users.CreateUser)
	users.Get("", staff, cfg.Users.ListUsers)

	tickets := api.Group("/tickets")
	tickets.Post("", staff, cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("/auto-assign", technicians, cfg.Tickets.AutoAssign)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign", staff, cfg.Tickets.AssignTicket)
	tickets.Post("/:id/start", technicians, cfg.Tickets.StartTicket)
	tickets.Post("/:id/close", technicians, cfg.Tickets.CloseTicket)
	tickets.Post("/:id/no-response", technicians, cfg.Tickets.NoResponse)
	tickets.Post("/:id/reject", admins, cfg.Tickets.RejectTicket)
	tickets.Post("/:id/cancel-reject", admins, cfg.Tickets.CancelReject)
	tickets.Post("/:id/reopen", admins, cfg.Tickets.ReopenTicket)
	tickets.Post("/:id/close-by-helpdesk", staff, cfg.Tickets.CloseByHelpdesk)

	reports := api.Group("/reports", staff)
	reports.Get("/tickets", cfg.Reports.TicketReport)
	reports.Get("/bonus-summary", cfg.Reports.BonusSummary)
	reports.Get("/performance-summary", cfg.Reports.PerformanceSummary)
	reports.Get("/technicians/:id", cfg.Reports.TechnicianPeriod)
	reports.Get("/dashboard", cfg.Reports.DashboardStats)

	settings := api.Group("/settings", admins)
	settings.Get("", cfg.Settings.List)
	settings.Get("/:key", cfg.Settings.Get)
	settings.Put("/:key", cfg.Settings.Put)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleSuperadmin))
	admin.Post("/reset-stale-assignments", cfg.Admin.ResetStaleAssignments)
	admin.Post("/recalculate-bonuses", cfg.Admin.RecalculateBonuses)
	admin.Post("/backfill-areas", cfg.Admin.BackfillAreas)
	admin.Post("/backfill-names", cfg.Admin.BackfillCustomerNames)
}
