// Package ratelimit builds the per-IP limiters mounted on the API groups.
package ratelimit

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
)

// NewStorage returns Redis-backed limiter storage when url is set, so
// counters are shared across server instances. With an empty url it
// returns nil and fiber keeps counters in memory.
func NewStorage(url string) fiber.Storage {
	if url == "" {
		return nil
	}
	slog.Info("rate limiter using redis storage")
	return redis.New(redis.Config{
		URL:   url,
		Reset: false,
	})
}

// New returns a sliding-window limiter allowing max requests per window
// per client IP. name keeps counters of different limiters apart when they
// share storage.
func New(name string, max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return name + ":" + c.IP() },
		Storage:           storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many requests",
			})
		},
	})
}
