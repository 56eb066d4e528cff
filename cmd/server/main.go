package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.Environment)

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
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Store + reconciler
	reconciler := store.NewReconciler(metrics.NewReconcile(prometheus.DefaultRegisterer))
	st := store.New(database.DB, store.WithReconciler(reconciler))

	// Services
	authService := services.NewAuthService(st, cfg)
	appService := services.NewAppService(st)
	subscriptionService := services.NewSubscriptionService(st)
	planService := services.NewPlanService(st)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	limiterStorage := ratelimit.NewStorage(cfg.RedisURL)

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(database.DB),
		App:          handlers.NewAppHandler(appService),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService),
		Plan:         handlers.NewPlanHandler(planService),
	}, limiterStorage)

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

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if limiterStorage != nil {
		if err := limiterStorage.Close(); err != nil {
			slog.Warn("limiter storage close error", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		slog.Warn("database close error", "error", err)
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
		slog.ErrorContext(c.UserContext(), "unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
