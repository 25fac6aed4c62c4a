package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/database"
	"github.com/reporthub-io/reporthub/internal/handlers"
	"github.com/reporthub-io/reporthub/internal/logging"
	"github.com/reporthub-io/reporthub/internal/metrics"
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/modules"
	"github.com/reporthub-io/reporthub/internal/modules/finance"
	"github.com/reporthub-io/reporthub/internal/modules/issues"
	"github.com/reporthub-io/reporthub/internal/routes"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Migrate core models
	if err := database.MigrateCore(); err != nil {
		slog.Error("core migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	spaceService := services.NewSpaceService(database.DB)
	peopleService := services.NewPeopleService(database.DB)
	dashboardService := services.NewDashboardService(database.DB)
	resolver := spacectx.NewResolver(database.DB)
	roleRouter := access.NewRouter()
	allowlist := access.DefaultGateAllowlist()

	// Feature modules
	issueService := issues.NewService(database.DB)
	financeService := finance.NewService(database.DB)
	mods := []modules.Module{
		issues.New(issueService),
		finance.New(financeService),
	}

	// Migrate module models
	for _, m := range mods {
		if modelList := m.Models(); len(modelList) > 0 {
			if err := database.MigrateModels(database.DB, modelList); err != nil {
				slog.Error("module migration failed", "module", m.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("module migrated", "module", m.ID(), "models", len(modelList))
		}
	}

	// Recurring transaction processor
	recurringCron, err := finance.StartRecurringProcessor(financeService, cfg.RecurringSchedule)
	if err != nil {
		slog.Error("recurring processor failed to start", "schedule", cfg.RecurringSchedule, "error", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, roleRouter, cfg)
	spaceHandler := handlers.NewSpaceHandler(spaceService)
	peopleHandler := handlers.NewPeopleHandler(peopleService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	healthHandler := handlers.NewHealthHandler()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(metrics.Middleware())

	// Routes
	routes.Setup(app, routes.Deps{
		Cfg:              cfg,
		DB:               database.DB,
		AuthService:      authService,
		Resolver:         resolver,
		Allowlist:        allowlist,
		AuthHandler:      authHandler,
		SpaceHandler:     spaceHandler,
		PeopleHandler:    peopleHandler,
		DashboardHandler: dashboardHandler,
		HealthHandler:    healthHandler,
		FocusGate:        issues.FocusGate(issueService),
		Modules:          mods,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	recurringCron.Stop()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
