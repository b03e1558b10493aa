package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/judging-admin-api/internal/config"
	"github.com/noah-isme/judging-admin-api/internal/handler"
	"github.com/noah-isme/judging-admin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ContestHandler    *handler.ContestHandler
	EntryHandler      *handler.EntryHandler
	EvaluationHandler *handler.EvaluationHandler
	JudgingHandler    *handler.JudgingHandler
	MessageHandler    *handler.MessageHandler
	TaskHandler       *handler.TaskHandler
	EvaluatorHandler  *handler.EvaluatorHandler
	GroupHandler      *handler.GroupHandler
	WinnerHandler     *handler.WinnerHandler
	ResultsHandler    *handler.ResultsHandler
	ContestantHandler *handler.ContestantHandler
	ActivityHandler   *handler.ActivityHandler
	AuthHandler       *handler.AuthHandler
	HealthChecks      map[string]handler.Pinger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/internal", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	if deps.ContestHandler != nil {
		deps.ContestHandler.Register(api.Group("/contests"))
	}
	if deps.EntryHandler != nil {
		deps.EntryHandler.Register(api.Group("/entries"))
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(api.Group("/evaluations"))
	}
	if deps.JudgingHandler != nil {
		deps.JudgingHandler.Register(api.Group("/judging"))
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages"))
	}
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api.Group("/tasks"))
	}
	if deps.EvaluatorHandler != nil {
		deps.EvaluatorHandler.Register(api.Group("/users"))
	}
	if deps.GroupHandler != nil {
		deps.GroupHandler.Register(api.Group("/groups"))
	}
	if deps.WinnerHandler != nil {
		deps.WinnerHandler.Register(api.Group("/winners"))
	}
	if deps.ResultsHandler != nil {
		deps.ResultsHandler.Register(api.Group("/results"))
	}
	if deps.ContestantHandler != nil {
		deps.ContestantHandler.Register(api.Group("/contestants"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity"))
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}
}
