package api

import (
	"context"
	"fmt"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/logger"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/modules/user"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// APIModule is the HTTP API module.
type APIModule struct {
	cfg      *config.Config
	log      *logrus.Entry
	app      *fiber.App
	storage  fiber.Storage
	userPort user.UserPort
	taskPort task.TaskPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg *config.Config, log *logrus.Entry) *APIModule {
	return &APIModule{
		cfg: cfg,
		log: logger.ForModule(log, "api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"user", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "user":
		m.userPort = user.NewUserAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.userPort == nil {
		return fmt.Errorf("user dependency not set")
	}
	if m.taskPort == nil {
		return fmt.Errorf("task dependency not set")
	}

	m.storage = newLimiterStorage(m.cfg.LoginLimit)
	m.app = newApp(m.log, m.cfg.LoginLimit, m.storage, m.userPort, m.taskPort)

	go func() {
		if err := m.app.Listen(m.cfg.HTTPAddr); err != nil {
			m.log.WithError(err).Error("HTTP server error")
		}
	}()

	m.log.WithField("addr", m.cfg.HTTPAddr).Info("HTTP server started")
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.log.Info("Shutting down HTTP server...")
	err := m.app.Shutdown()
	if m.storage != nil {
		if cerr := m.storage.Close(); cerr != nil {
			m.log.WithError(cerr).Warn("failed to close rate limit storage")
		}
	}
	return err
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	limiterBackend := "memory"
	if m.cfg.LoginLimit.RedisAddr != "" {
		limiterBackend = "redis"
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr":            m.cfg.HTTPAddr,
			"limiter_backend": limiterBackend,
		},
	}
}

// newApp builds the Fiber application with all middleware and routes.
func newApp(log *logrus.Entry, limit config.RateLimitConfig, storage fiber.Storage, users user.UserPort, tasks task.TaskPort) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          newErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())
	app.Use(MetricsMiddleware())

	setupRoutes(app, NewHandlers(users, tasks), AuthMiddleware(users), LoginRateLimit(limit, storage))
	return app
}

// setupRoutes configures all API routes.
func setupRoutes(app *fiber.App, h *Handlers, auth, loginLimit fiber.Handler) {
	app.Get("/health", h.Health)
	app.Get("/metrics", MetricsHandler())

	api := app.Group("/api")
	api.Get("/health", h.Health)

	// Public user routes
	api.Post("/users/register", h.Register)
	api.Post("/users/login", loginLimit, h.Login)

	// Protected routes
	users := api.Group("/users", auth)
	users.Get("/", h.ListUsers)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)

	tasks := api.Group("/tasks", auth)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/", h.ListTasks)
	tasks.Get("/user/:userId", h.ListUserTasks)
	tasks.Get("/user/:userId/status/:status", h.ListUserTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Get("/:id/history", h.TaskHistory)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Patch("/:id/complete", h.CompleteTask)
	tasks.Delete("/:id", h.DeleteTask)
}
