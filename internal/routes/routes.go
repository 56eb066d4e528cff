package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/ratelimit"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	App          *handlers.AppHandler
	Subscription *handlers.SubscriptionHandler
	Plan         *handlers.PlanHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, storage fiber.Storage) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(ratelimit.New("api", cfg.RateLimitMax, time.Minute, storage))

	api.Get("/health", h.Health.Check)

	v1 := api.Group("/v1")

	// Credential endpoints get a stricter limit. Middleware is attached per
	// route so it does not leak onto sibling paths under /auth.
	strict := ratelimit.New("auth", 10, time.Minute, storage)
	v1.Post("/signup", strict, h.Auth.Signup)
	v1.Post("/login", strict, h.Auth.Login)
	v1.Post("/auth/refresh", strict, h.Auth.Refresh)

	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.CallerRequired(db)}

	v1.Post("/auth/logout", append(protected, h.Auth.Logout)...)
	v1.Delete("/auth/account", append(protected, h.Auth.DeleteAccount)...)

	apps := v1.Group("/apps", protected...)
	apps.Get("/", h.App.List)
	apps.Post("/", h.App.Create)
	apps.Get("/:id", h.App.Get)
	apps.Put("/:id", h.App.Update)
	apps.Patch("/:id", h.App.Update)
	apps.Delete("/:id", h.App.Delete)

	subs := v1.Group("/subscriptions", protected...)
	subs.Get("/", h.Subscription.List)
	subs.Post("/", h.Subscription.Create)
	subs.Get("/:id", h.Subscription.Get)
	subs.Put("/:id", h.Subscription.Update)
	subs.Patch("/:id", h.Subscription.Update)

	plans := v1.Group("/plans", protected...)
	plans.Get("/", h.Plan.List)
	plans.Get("/:id", h.Plan.Get)

	admin := api.Group("/admin", append(protected, middleware.AdminRequired(db, cfg))...)
	admin.Post("/plans", h.Plan.Create)
	admin.Put("/plans/:id", h.Plan.Update)
	admin.Patch("/plans/:id", h.Plan.Update)
}
