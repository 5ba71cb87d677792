package main

import (
	"context"
	"os"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/database"
	"github.com/example/task-tracker/logger"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/modules/user"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	log.Info("=== Task Tracker ===")

	// One connection pool shared by all modules; sqlite allows a single writer.
	db, err := database.Open(context.Background(), cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}

	monoLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		monoLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(monoLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to create application")
	}

	// Order: independent modules first, then dependent modules
	app.Register(user.NewModule(db, cfg, log))
	app.Register(task.NewModule(db, log))
	app.Register(api.NewModule(cfg, log)) // Depends on user and task

	if err := app.Start(context.Background()); err != nil {
		log.WithError(err).Fatal("Failed to start application")
	}

	printStartupInfo(log, cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Info("Graceful shutdown initiated...")
				stopErr := app.Stop(ctx)
				if err := database.Close(db); err != nil {
					log.WithError(err).Warn("Failed to close database")
				}
				return stopErr
			},
		},
	)

	exitCode := <-wait
	log.WithField("exit_code", exitCode).Info("Application exited")
	os.Exit(exitCode)
}

func printStartupInfo(log *logrus.Entry, cfg *config.Config) {
	log.WithFields(logrus.Fields{
		"addr":            cfg.HTTPAddr,
		"db_driver":       cfg.DB.Driver,
		"password_scheme": cfg.Password.Scheme,
	}).Info("Application started successfully")

	routes := []string{
		"GET    /health                                - Health check",
		"GET    /metrics                               - Prometheus metrics",
		"POST   /api/users/register                    - Register a new user",
		"POST   /api/users/login                       - Login and get a token (rate limited)",
		"GET    /api/users                             - List users",
		"GET    /api/users/:id                         - Get a user",
		"PUT    /api/users/:id                         - Update a user",
		"DELETE /api/users/:id                         - Delete a user",
		"POST   /api/tasks                             - Create a task",
		"GET    /api/tasks                             - List all tasks",
		"GET    /api/tasks/:id                         - Get a task",
		"GET    /api/tasks/user/:userId                - List a user's tasks",
		"GET    /api/tasks/user/:userId/status/:status - List a user's tasks by status",
		"PUT    /api/tasks/:id                         - Update a task",
		"PATCH  /api/tasks/:id/complete                - Mark a task completed",
		"DELETE /api/tasks/:id                         - Delete a task",
		"GET    /api/tasks/:id/history                 - Task history, newest first",
	}
	for _, r := range routes {
		log.Info("  " + r)
	}
	log.Info("Press Ctrl+C to shutdown gracefully")
}
