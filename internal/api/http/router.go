package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/api/http/handlers"
	"github.com/spec-kit/onboarding-service/internal/auth"
	"github.com/spec-kit/onboarding-service/internal/observability"
	"github.com/spec-kit/onboarding-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Wizard         *handlers.WizardHandler
	Uploads        *handlers.UploadsHandler
	Reference      *handlers.ReferenceHandler
	Managers       *handlers.ManagersHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadLimiter  ratelimit.Limiter
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	wizard := app.Group("/wizard")
	wizard.Get("/schema", cfg.Wizard.Schema)
	wizard.Post("/sessions", cfg.Wizard.Start)
	wizard.Get("/sessions/:id", cfg.Wizard.Get)
	wizard.Post("/sessions/:id/advance", cfg.Wizard.Advance)
	wizard.Post("/sessions/:id/retreat", cfg.Wizard.Retreat)
	wizard.Post("/sessions/:id/jump", cfg.Wizard.Jump)
	wizard.Get("/sessions/:id/tasks", cfg.Wizard.Tasks)
	wizard.Put("/sessions/:id/tasks/selection", cfg.Wizard.SelectTasks)
	wizard.Post("/sessions/:id/tasks/acknowledge", cfg.Wizard.Acknowledge)

	app.Post("/uploads/:kind", rateLimitMiddleware(cfg.UploadLimiter, logger), cfg.Uploads.Upload)
	app.Get("/files/*", cfg.Uploads.Serve)

	reference := app.Group("/reference")
	reference.Get("/departments", cfg.Reference.Departments)
	reference.Get("/teams", cfg.Reference.Teams)
	reference.Get("/managers", cfg.Reference.Managers)
	reference.Get("/recruiters", cfg.Reference.Recruiters)

	app.Post("/auth/managers/login", cfg.Managers.Login)

	manager := app.Group("/manager", cfg.AuthMiddleware.Handle, auth.RequireManager())
	manager.Get("/tasks", cfg.Managers.ListTasks)
	manager.Post("/tasks", cfg.Managers.CreateTask)
	manager.Post("/tasks/:id/assign", cfg.Managers.AssignTask)
	manager.Post("/submissions/:id/complete", cfg.Managers.CompleteSubmission)
	manager.Get("/files/*", cfg.Uploads.ServeManager)
}
