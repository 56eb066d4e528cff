package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
)

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Admin-Token",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		ExposeHeaders:    "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After",
		AllowCredentials: false,
		MaxAge:           600,
	})
}
