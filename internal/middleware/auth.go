package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
)

// JWTProtected accepts HS256 access tokens signed with JWT_SECRET and stores
// the parsed token under the "user" local.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: "user",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
