package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/baniakuntest4-alt/arhanud/controllers"
	"github.com/baniakuntest4-alt/arhanud/middlewares"
	"github.com/baniakuntest4-alt/arhanud/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public endpoints
	api.Post("/init/setup", controllers.InitSetup)
	api.Post("/auth/login", controllers.Login)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST so replays never reach the handlers
	protected.Use(middlewares.Idempotency())

	protected.Post("/auth/logout", controllers.Logout)
	protected.Get("/auth/me", controllers.Me)
	protected.Post("/auth/change-password", controllers.ChangePassword)

	// User management (admin only)
	users := protected.Group("/users", middlewares.RequirePermission(models.OpManageUsers))
	users.Post("", controllers.CreateUser)
	users.Get("", controllers.GetUsers)
	users.Get("/:id", controllers.GetUser)
	users.Put("/:id", controllers.UpdateUser)
	users.Post("/:id/reset-password", controllers.ResetPassword)
	users.Delete("/:id", controllers.DeactivateUser)

	// Personnel records
	protected.Get("/personnel", controllers.GetPersonnelList)
	protected.Get("/personnel/count", controllers.GetPersonnelCount)
	protected.Get("/personnel/:id", controllers.GetPersonnel)
	protected.Post("/personnel", middlewares.RequirePermission(models.OpManagePersonnel), controllers.CreatePersonnel)
	protected.Put("/personnel/:id", middlewares.RequirePermission(models.OpManagePersonnel), controllers.UpdatePersonnel)

	// Personnel sub-resources
	protected.Get("/personnel/:id/rank-history", controllers.GetRankHistory)
	protected.Post("/personnel/:id/rank-history", middlewares.RequirePermission(models.OpManagePersonnel), controllers.CreateRankHistory)
	protected.Get("/personnel/:id/position-history", controllers.GetPositionHistory)
	protected.Post("/personnel/:id/position-history", middlewares.RequirePermission(models.OpManagePersonnel), controllers.CreatePositionHistory)
	protected.Get("/personnel/:id/education", controllers.GetEducation)
	protected.Post("/personnel/:id/education", middlewares.RequirePermission(models.OpManagePersonnel), controllers.CreateEducation)
	protected.Get("/personnel/:id/family", controllers.GetFamily)
	protected.Post("/personnel/:id/family", middlewares.RequirePermission(models.OpManagePersonnel), controllers.CreateFamily)

	// Request workflow
	protected.Post("/requests", middlewares.RequirePermission(models.OpSubmitRequest), controllers.SubmitRequest)
	protected.Get("/requests", controllers.ListRequests)
	protected.Get("/requests/:id", controllers.GetRequest)
	protected.Put("/requests/:id/verify", middlewares.RequirePermission(models.OpVerifyRequest), controllers.VerifyRequest)

	// Audit log (admin/leader)
	protected.Get("/audit-logs", middlewares.RequirePermission(models.OpViewAuditLog), controllers.GetAuditLogs)

	// Dashboard & reference data
	protected.Get("/dashboard/stats", controllers.GetDashboardStats)
	protected.Get("/reference/pangkat", controllers.GetPangkatList)
	protected.Get("/reference/satuan", controllers.GetSatuanList)

	// Reports (JSON datasets)
	protected.Get("/reports/personnel", middlewares.RequirePermission(models.OpViewReports), controllers.GetPersonnelReport)
	protected.Get("/reports/requests", middlewares.RequirePermission(models.OpViewReports), controllers.GetRequestsReport)
}
